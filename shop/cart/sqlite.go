package cart

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLite stores cart lines through gorm, using an ON CONFLICT upsert for Add.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite returns a gorm-backed cart store. The cart_items table must already be migrated.
func NewSQLite(db *gorm.DB) *SQLite {
	return &SQLite{db: db}
}

// Add implements Store.
func (s *SQLite) Add(ctx context.Context, userID, productID int64, quantity int) error {
	line := Line{UserID: userID, ProductID: productID, Quantity: quantity}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
		}),
	}).Create(&line).Error
	if err != nil {
		return fmt.Errorf("cart: add: %w", err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLite) Remove(ctx context.Context, userID, productID int64) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&Line{}).Error
	if err != nil {
		return fmt.Errorf("cart: remove: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLite) Clear(ctx context.Context, userID int64) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Line{}).Error; err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

// Lines implements Store.
func (s *SQLite) Lines(ctx context.Context, userID int64) ([]Line, error) {
	var out []Line
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("cart: lines: %w", err)
	}
	return out, nil
}
