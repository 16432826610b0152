package cart

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Postgres stores cart lines in the cart_items table. The (user_id, product_id)
// unique constraint makes Add a single atomic upsert.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres returns a Postgres cart store over db.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Add implements Store.
func (s *Postgres) Add(ctx context.Context, userID, productID int64, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("cart: add: %w", err)
	}
	return nil
}

// Remove implements Store.
func (s *Postgres) Remove(ctx context.Context, userID, productID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("cart: remove: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *Postgres) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

// Lines implements Store.
func (s *Postgres) Lines(ctx context.Context, userID int64) ([]Line, error) {
	var out []Line
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: lines: %w", err)
	}
	return out, nil
}
