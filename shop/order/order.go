// Package order turns a confirmed checkout into an order snapshot and hands
// it to the operator's notification sinks.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/checkout"
)

// Line is one product in an order, priced at confirmation time.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is an immutable snapshot produced once per successful checkout. It is not stored.
type Order struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Build snapshots the draft and cart items into an Order with a fresh id.
func Build(userID int64, d checkout.Draft, items []cart.Item, now time.Time) Order {
	o := Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		Lines:     make([]Line, 0, len(items)),
		Total:     cart.Sum(items),
		CreatedAt: now.UTC(),
	}
	for _, it := range items {
		o.Lines = append(o.Lines, Line{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
		})
	}
	return o
}

// ShortID is the first block of the order id, used in human-facing text.
func (o Order) ShortID() string {
	if len(o.ID) >= 8 {
		return o.ID[:8]
	}
	return o.ID
}
