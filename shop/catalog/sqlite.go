package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// SQLite reads the catalog through gorm; used by the embedded sqlite backend.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite returns a gorm-backed catalog. The products table must already be migrated.
func NewSQLite(db *gorm.DB) *SQLite {
	return &SQLite{db: db}
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return p, nil
}

// Count implements Writer.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return int(n), nil
}

// Insert implements Writer.
func (s *SQLite) Insert(ctx context.Context, products ...Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]Product, len(products))
	copy(rows, products)
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("catalog: insert: %w", err)
	}
	return nil
}
