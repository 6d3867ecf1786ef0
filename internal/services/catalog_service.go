package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"examapp/internal/domain"
	"examapp/internal/repos"
	"examapp/internal/validate"
)

const suggestLimit = 10

var ErrInvalidProduct = errors.New("invalid product")

// ProductError lists the field problems of a rejected product.
type ProductError struct {
	Messages []string
}

func (e *ProductError) Error() string {
	return "invalid product: " + strings.Join(e.Messages, "; ")
}

func (e *ProductError) Is(target error) bool { return target == ErrInvalidProduct }

type CatalogService struct {
	Prods *repos.ProductRepo
	Refs  *repos.ReferenceRepo
}

func NewCatalogService(prods *repos.ProductRepo, refs *repos.ReferenceRepo) *CatalogService {
	return &CatalogService{Prods: prods, Refs: refs}
}

// Listing is the filtered view rendered on the staff dashboards.
type Listing struct {
	Products  []domain.Product
	Producers []domain.Producer
	Total     int

	Search   string
	Sort     string
	Producer string

	// ProducerIgnored is set when a non-numeric producer id was dropped.
	ProducerIgnored bool
}

func (s *CatalogService) Products() ([]domain.Product, error) {
	return s.Prods.All()
}

// Filter builds the dashboard listing from raw query parameters. Empty or
// unknown values degrade to "no filter".
func (s *CatalogService) Filter(search, sort, producer string) (Listing, error) {
	l := Listing{Search: validate.Q(search), Sort: validate.Sort(sort), Producer: strings.TrimSpace(producer)}
	f := repos.ProductFilter{Search: l.Search, Sort: l.Sort}
	if l.Producer != "" {
		if id, ok := validate.ID(l.Producer); ok {
			f.ProducerID = id
		} else {
			l.ProducerIgnored = true
			l.Producer = ""
		}
	}

	products, err := s.Prods.Filter(f)
	if err != nil {
		return l, err
	}
	producers, err := s.Refs.Producers()
	if err != nil {
		return l, err
	}
	l.Products, l.Producers, l.Total = products, producers, len(products)
	return l, nil
}

func (s *CatalogService) Suggest(term string) ([]repos.Suggestion, error) {
	return s.Prods.Suggest(validate.Q(term), suggestLimit)
}

// ProductInput is the administrator's product form.
type ProductInput struct {
	Article        string          `validate:"required,max=255"`
	Name           string          `validate:"required,max=255"`
	Unit           string          `validate:"required,max=255"`
	Price          decimal.Decimal `validate:"gte=0"`
	Discount       decimal.Decimal `validate:"gte=0,lte=100"`
	Amount         int             `validate:"gte=0"`
	ProducerID     int64           `validate:"gt=0"`
	ManufacturerID int64           `validate:"gt=0"`
	CategoryID     int64           `validate:"gt=0"`
	Description    string          `validate:"max=255"`
}

// CreateProduct validates the input, including the 0..100 discount range, and stores it.
func (s *CatalogService) CreateProduct(in ProductInput) (int64, error) {
	in.Article = strings.TrimSpace(in.Article)
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return 0, &ProductError{Messages: validate.Messages(err)}
	}
	return s.Prods.Create(domain.Product{
		Article: in.Article, Name: in.Name, Unit: in.Unit,
		Price: in.Price, Discount: in.Discount, Amount: in.Amount,
		ProducerID: in.ProducerID, ManufacturerID: in.ManufacturerID, CategoryID: in.CategoryID,
		Description: in.Description,
	})
}

// Form bundles the selector options of the product form.
type Form struct {
	Producers     []domain.Producer
	Manufacturers []domain.Manufacturer
	Categories    []domain.Category
}

func (s *CatalogService) Form() (Form, error) {
	var f Form
	var err error
	if f.Producers, err = s.Refs.Producers(); err != nil {
		return f, err
	}
	if f.Manufacturers, err = s.Refs.Manufacturers(); err != nil {
		return f, err
	}
	f.Categories, err = s.Refs.Categories()
	return f, err
}
