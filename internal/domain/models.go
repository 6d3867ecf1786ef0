package domain

import "github.com/shopspring/decimal"

type PickupPoint struct {
	ID       int64  `db:"id"`
	Index    string `db:"postal_index"`
	City     string `db:"city"`
	Street   string `db:"street"`
	Building string `db:"building"`
}

// Address renders the point the way it is printed on order slips.
func (p PickupPoint) Address() string {
	return p.Index + ", " + p.City + ", " + p.Street + ", " + p.Building
}

type Producer struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Manufacturer struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// OrderStatus is a free-text lifecycle label; transitions are not enforced.
type OrderStatus struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Product struct {
	ID             int64           `db:"id"`
	Article        string          `db:"article"`
	Name           string          `db:"name"`
	Unit           string          `db:"unit"`
	Price          decimal.Decimal `db:"price"`
	ProducerID     int64           `db:"producer_id"`
	ManufacturerID int64           `db:"manufacturer_id"`
	CategoryID     int64           `db:"category_id"`
	Discount       decimal.Decimal `db:"discount"`
	Amount         int             `db:"amount_on_warehouse"`
	Description    string          `db:"description"`
	Image          string          `db:"image"`

	// Populated by joined listings only.
	ProducerName     string `db:"producer_name"`
	ManufacturerName string `db:"manufacturer_name"`
	CategoryName     string `db:"category_name"`
}

var hundred = decimal.NewFromInt(100)

// FinalPrice applies the discount percent to the list price.
func (p Product) FinalPrice() decimal.Decimal {
	if p.Discount.GreaterThan(decimal.Zero) {
		return p.Price.Mul(hundred.Sub(p.Discount)).Div(hundred)
	}
	return p.Price
}

func (p Product) Discounted() bool { return p.Discount.GreaterThan(decimal.Zero) }

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

// Availability converts warehouse quantity into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (p Product) Availability() string {
	switch {
	case p.Amount >= 5:
		return InStock
	case p.Amount > 0:
		return LowStock
	}
	return OutOfStock
}

type Order struct {
	ID            int64  `db:"id"`
	Number        int64  `db:"number"`
	Article       string `db:"article"`
	Quantity      int    `db:"quantity"`
	OrderDate     string `db:"order_date"`
	DeliveryDate  string `db:"delivery_date"`
	PickupPointID int64  `db:"pickup_point_id"`
	ClientID      int64  `db:"client_id"`
	Code          string `db:"code"`
	StatusID      int64  `db:"status_id"`

	// Populated by joined listings only.
	Pickup     PickupPoint `db:"pickup"`
	ClientName string      `db:"client_name"`
	StatusName string      `db:"status_name"`
}

func (o Order) PickupAddress() string { return o.Pickup.Address() }

// Notice is a user-visible message queued in the session until the next render.
type Notice struct {
	Level string `db:"level"` // success | info | warning | error
	Text  string `db:"text"`
}

const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)
