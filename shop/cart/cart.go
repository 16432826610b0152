// Package cart keeps one shopping cart per user: at most one line per product,
// repeated adds merge by summing quantity.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/shop/catalog"
)

var (
	// ErrInvalidReference is returned when adding a product the catalog does not know.
	ErrInvalidReference = errors.New("cart: unknown product")
	// ErrInvalidQuantity is returned when adding fewer than one unit.
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
)

// Line is a stored cart row keyed by (user, product).
type Line struct {
	ID        int64 `db:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64 `db:"user_id" gorm:"not null;uniqueIndex:ux_cart_user_product,priority:1;index"`
	ProductID int64 `db:"product_id" gorm:"not null;uniqueIndex:ux_cart_user_product,priority:2"`
	Quantity  int   `db:"quantity" gorm:"not null"`
}

// TableName pins the gorm table name to the one used by the SQL migrations.
func (Line) TableName() string { return "cart_items" }

// Store persists cart lines. Add must merge atomically with an existing line.
type Store interface {
	Add(ctx context.Context, userID, productID int64, quantity int) error
	// Remove deletes the whole line; a missing line is not an error.
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	// Lines returns the user's lines in insertion order.
	Lines(ctx context.Context, userID int64) ([]Line, error)
}

// Item is a cart line joined with its catalog product.
type Item struct {
	Product  catalog.Product
	Quantity int
}

// Subtotal is unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sum totals the subtotals of items; an empty slice sums to zero.
func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
