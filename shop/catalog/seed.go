package catalog

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/logger"
)

// SampleProducts is the starter assortment inserted into an empty catalog.
func SampleProducts() []Product {
	return []Product{
		{Name: "T-shirt", Description: "Cotton t-shirt", Price: decimal.NewFromInt(450)},
		{Name: "Jeans", Description: "Classic jeans", Price: decimal.NewFromInt(1200)},
		{Name: "Sneakers", Description: "Running sneakers", Price: decimal.NewFromInt(1800)},
		{Name: "Jacket", Description: "Winter jacket", Price: decimal.NewFromInt(2500)},
	}
}

// Seed inserts products only when the catalog is empty. It reports how many rows were written.
func Seed(ctx context.Context, w Writer, products []Product) (int, error) {
	n, err := w.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.SEED.Debug("catalog already populated",
			slog.String("event", "seed.skip"),
			slog.Int("products", n),
		)
		return 0, nil
	}
	if err := w.Insert(ctx, products...); err != nil {
		return 0, err
	}
	logger.SEED.Info("catalog seeded",
		slog.String("event", "seed"),
		slog.Int("products", len(products)),
	)
	return len(products), nil
}
