// Package catalog provides read access to the product list shown by the shop.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Get when the product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a catalog entry. Products are immutable once seeded.
type Product struct {
	ID          int64           `db:"id" json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `db:"name" json:"name" gorm:"size:128;not null"`
	Description string          `db:"description" json:"description" gorm:"not null;default:''"`
	Price       decimal.Decimal `db:"price" json:"price" gorm:"type:numeric;not null"`
	ImageURL    string          `db:"image_url" json:"image_url,omitempty" gorm:"not null;default:''"`
}

// TableName pins the gorm table name to the one used by the SQL migrations.
func (Product) TableName() string { return "products" }

// Store is the read side of the catalog.
type Store interface {
	// List returns all products ordered by id.
	List(ctx context.Context) ([]Product, error)
	// Get returns the product or ErrNotFound.
	Get(ctx context.Context, id int64) (Product, error)
}

// Writer is the bootstrap-only side of the catalog used by seeding.
type Writer interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, products ...Product) error
}
