package repos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"examapp/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const (
	SortAmountAsc  = "amount_asc"
	SortAmountDesc = "amount_desc"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	Search     string
	ProducerID int64
	Sort       string
}

const productSelect = `
  SELECT
    p.id, p.article, p.name, p.unit, p.price, p.producer_id, p.manufacturer_id, p.category_id,
    p.discount, p.amount_on_warehouse, p.description, p.image,
    pr.name AS producer_name, m.name AS manufacturer_name, c.name AS category_name
  FROM products p
  JOIN producers pr     ON pr.id = p.producer_id
  JOIN manufacturers m  ON m.id = p.manufacturer_id
  JOIN categories c     ON c.id = p.category_id`

// Filter searches name, article, description, producer and manufacturer names
// case-insensitively, then restricts by producer and orders by warehouse quantity.
func (r *ProductRepo) Filter(f ProductFilter) ([]domain.Product, error) {
	where := []string{}
	args := []any{}
	if q := strings.TrimSpace(f.Search); q != "" {
		pat := likeContains(q)
		where = append(where, `(casefold(p.name) LIKE ? ESCAPE '\'
		  OR casefold(p.article) LIKE ? ESCAPE '\'
		  OR casefold(p.description) LIKE ? ESCAPE '\'
		  OR casefold(pr.name) LIKE ? ESCAPE '\'
		  OR casefold(m.name) LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat, pat, pat)
	}
	if f.ProducerID != 0 {
		where = append(where, `p.producer_id = ?`)
		args = append(args, f.ProducerID)
	}

	q := productSelect
	if len(where) > 0 {
		q += "\n  WHERE " + strings.Join(where, " AND ")
	}
	switch f.Sort {
	case SortAmountAsc:
		q += "\n  ORDER BY p.amount_on_warehouse ASC, p.id"
	case SortAmountDesc:
		q += "\n  ORDER BY p.amount_on_warehouse DESC, p.id"
	default:
		q += "\n  ORDER BY p.id"
	}

	out := []domain.Product{}
	err := r.db.Select(&out, q, args...)
	return out, err
}

func (r *ProductRepo) All() ([]domain.Product, error) { return r.Filter(ProductFilter{}) }

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, productSelect+"\n  WHERE p.id = ?", id)
	return p, err
}

// Suggestion is one entry of the search-as-you-type list.
type Suggestion struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func (r *ProductRepo) Suggest(term string, limit int) ([]Suggestion, error) {
	out := []Suggestion{}
	term = strings.TrimSpace(term)
	if term == "" {
		return out, nil
	}
	err := r.db.Select(&out, `
	  SELECT id, name FROM products
	  WHERE casefold(name) LIKE ? ESCAPE '\'
	  ORDER BY name, id
	  LIMIT ?`, likeContains(term), limit)
	return out, err
}

// SetImage replaces the stored image reference; sql.ErrNoRows if the product is unknown.
func (r *ProductRepo) SetImage(id int64, image string) error {
	res, err := r.db.Exec(`UPDATE products SET image = ? WHERE id = ?`, image, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO products
	    (article, name, unit, price, producer_id, manufacturer_id, category_id, discount, amount_on_warehouse, description, image)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Article, p.Name, p.Unit, p.Price, p.ProducerID, p.ManufacturerID, p.CategoryID,
		p.Discount, p.Amount, p.Description, p.Image)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeContains(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
