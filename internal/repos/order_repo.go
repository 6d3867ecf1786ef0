package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"examapp/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderSelect = `
  SELECT
    o.id, o.number, o.article, o.quantity, o.order_date, o.delivery_date,
    o.pickup_point_id, o.client_id, o.code, o.status_id,
    pp.id AS "pickup.id", pp.postal_index AS "pickup.postal_index", pp.city AS "pickup.city",
    pp.street AS "pickup.street", pp.building AS "pickup.building",
    COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username) AS client_name,
    s.name AS status_name
  FROM orders o
  JOIN pickup_points pp  ON pp.id = o.pickup_point_id
  JOIN users u           ON u.id = o.client_id
  JOIN order_statuses s  ON s.id = o.status_id`

// Create inserts an order; the pickup point, client and status must exist.
func (r *OrderRepo) Create(o domain.Order) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO orders
	    (number, article, quantity, order_date, delivery_date, pickup_point_id, client_id, code, status_id)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Number, o.Article, o.Quantity, o.OrderDate, o.DeliveryDate, o.PickupPointID, o.ClientID, o.Code, o.StatusID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *OrderRepo) Get(id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, orderSelect+"\n  WHERE o.id = ?", id)
	return o, err
}

// ListByClient returns a client's orders, newest first.
func (r *OrderRepo) ListByClient(clientID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, orderSelect+`
	  WHERE o.client_id = ?
	  ORDER BY o.order_date DESC, o.id DESC`, clientID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := r.db.Select(&out, orderSelect+`
	  ORDER BY o.order_date DESC, o.id DESC
	  LIMIT ?`, limit)
	return out, err
}

// UpdateStatus relabels an order; sql.ErrNoRows if the order is unknown.
func (r *OrderRepo) UpdateStatus(id, statusID int64) error {
	res, err := r.db.Exec(`UPDATE orders SET status_id = ? WHERE id = ?`, statusID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
