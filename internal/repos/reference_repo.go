package repos

import (
	"github.com/jmoiron/sqlx"

	"examapp/internal/domain"
)

// ReferenceRepo serves the small lookup tables shown in selectors and forms.
type ReferenceRepo struct{ db *sqlx.DB }

func NewReferenceRepo(db *sqlx.DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

func (r *ReferenceRepo) Producers() ([]domain.Producer, error) {
	out := []domain.Producer{}
	err := r.db.Select(&out, `SELECT id, name FROM producers ORDER BY name, id`)
	return out, err
}

func (r *ReferenceRepo) CreateProducer(name string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO producers(name) VALUES(?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ReferenceRepo) Manufacturers() ([]domain.Manufacturer, error) {
	out := []domain.Manufacturer{}
	err := r.db.Select(&out, `SELECT id, name FROM manufacturers ORDER BY name, id`)
	return out, err
}

func (r *ReferenceRepo) Categories() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT id, name FROM categories ORDER BY name, id`)
	return out, err
}

func (r *ReferenceRepo) Statuses() ([]domain.OrderStatus, error) {
	out := []domain.OrderStatus{}
	err := r.db.Select(&out, `SELECT id, name FROM order_statuses ORDER BY id`)
	return out, err
}

func (r *ReferenceRepo) PickupPoints() ([]domain.PickupPoint, error) {
	out := []domain.PickupPoint{}
	err := r.db.Select(&out, `SELECT id, postal_index, city, street, building FROM pickup_points ORDER BY city, id`)
	return out, err
}
