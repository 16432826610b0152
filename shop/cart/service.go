package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/shop/catalog"
)

// Service validates cart mutations against the catalog and joins lines with products.
type Service struct {
	store   Store
	catalog catalog.Store
}

// NewService wires a cart store to the catalog it references.
func NewService(store Store, products catalog.Store) *Service {
	return &Service{store: store, catalog: products}
}

// AddItem adds quantity units of productID, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrInvalidReference, productID)
		}
		return err
	}
	if err := s.store.Add(ctx, userID, productID, quantity); err != nil {
		return err
	}
	logger.Debug(ctx, "service.cart", "cart.add",
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// RemoveItem deletes the line for productID if present.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.store.Remove(ctx, userID, productID)
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.store.Clear(ctx, userID)
}

// Items returns the cart joined with the catalog. Lines whose product has
// been removed from the catalog are skipped.
func (s *Service) Items(ctx context.Context, userID int64) ([]Item, error) {
	lines, err := s.store.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(lines))
	for _, ln := range lines {
		p, err := s.catalog.Get(ctx, ln.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Debug(ctx, "service.cart", "cart.stale_line",
				slog.Int64("user_id", userID),
				slog.Int64("product_id", ln.ProductID),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Product: p, Quantity: ln.Quantity})
	}
	return items, nil
}

// Total is the sum of Items subtotals; an empty cart totals zero.
func (s *Service) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return Sum(items), nil
}
