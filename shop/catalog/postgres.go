package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Postgres reads the catalog from the products table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres returns a Postgres catalog over db.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// List implements Store.
func (s *Postgres) List(ctx context.Context) ([]Product, error) {
	var out []Product
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, name, description, price, image_url FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (s *Postgres) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, description, price, image_url FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return p, nil
}

// Count implements Writer.
func (s *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// Insert implements Writer. All products are written in one transaction.
func (s *Postgres) Insert(ctx context.Context, products ...Product) error {
	if len(products) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range products {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO products (name, description, price, image_url)
			 VALUES (:name, :description, :price, :image_url)`, p)
		if err != nil {
			return fmt.Errorf("catalog: insert %q: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: insert commit: %w", err)
	}
	return nil
}
