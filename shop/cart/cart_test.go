package cart

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/core/database"
	"github.com/m3rciful/shopbot/core/database/pgtest"
	"github.com/m3rciful/shopbot/shop/catalog"
)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(
		catalog.Product{ID: 1, Name: "Shirt", Price: decimal.NewFromInt(450)},
		catalog.Product{ID: 2, Name: "Jeans", Price: decimal.NewFromInt(1200)},
		catalog.Product{ID: 3, Name: "Socks", Price: decimal.RequireFromString("99.50")},
	)
}

// storeContract runs the behaviour every Store backend must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("add merges by sum", func(t *testing.T) {
		s := newStore(t)
		for _, q := range []int{1, 2, 3} {
			require.NoError(t, s.Add(ctx, 10, 1, q))
		}
		lines, err := s.Lines(ctx, 10)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 6, lines[0].Quantity)
	})

	t.Run("remove deletes whole line and ignores missing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, 10, 1, 3))
		require.NoError(t, s.Add(ctx, 10, 2, 1))
		require.NoError(t, s.Remove(ctx, 10, 1))
		require.NoError(t, s.Remove(ctx, 10, 99))

		lines, err := s.Lines(ctx, 10)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int64(2), lines[0].ProductID)
	})

	t.Run("clear is idempotent and user scoped", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, 10, 1, 1))
		require.NoError(t, s.Add(ctx, 20, 1, 1))
		require.NoError(t, s.Clear(ctx, 10))
		require.NoError(t, s.Clear(ctx, 10))

		lines, err := s.Lines(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, lines)
		lines, err = s.Lines(ctx, 20)
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("lines keep insertion order", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, 10, 3, 1))
		require.NoError(t, s.Add(ctx, 10, 1, 1))
		require.NoError(t, s.Add(ctx, 10, 3, 1))
		lines, err := s.Lines(ctx, 10)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, int64(3), lines[0].ProductID)
		assert.Equal(t, int64(1), lines[1].ProductID)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(*testing.T) Store { return NewMemory() })
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "cart.db"), &Line{})
		require.NoError(t, err)
		return NewSQLite(db)
	})
}

func TestPostgresStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		db := pgtest.Open(t)
		_, err := db.Exec(`INSERT INTO products (id, name, price)
			VALUES (1, 'Shirt', 450), (2, 'Jeans', 1200), (3, 'Socks', 99.50)`)
		require.NoError(t, err)
		return NewPostgres(db)
	})
}

func TestServiceAddValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemory(), testCatalog())

	err := svc.AddItem(ctx, 1, 42, 1)
	assert.ErrorIs(t, err, ErrInvalidReference)

	err = svc.AddItem(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	items, err := svc.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServiceTotal(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemory(), testCatalog())

	total, err := svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	require.NoError(t, svc.AddItem(ctx, 1, 1, 1))
	require.NoError(t, svc.AddItem(ctx, 1, 2, 2))
	require.NoError(t, svc.AddItem(ctx, 1, 3, 2))

	total, err = svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "3049", total.String())

	require.NoError(t, svc.Clear(ctx, 1))
	total, err = svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestServiceItemsSkipDeletedProducts(t *testing.T) {
	ctx := context.Background()
	products := testCatalog()
	svc := NewService(NewMemory(), products)

	require.NoError(t, svc.AddItem(ctx, 1, 1, 1))
	require.NoError(t, svc.AddItem(ctx, 1, 2, 1))
	products.Delete(1)

	items, err := svc.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Jeans", items[0].Product.Name)
}

type failingStore struct{ Store }

var errDown = errors.New("storage down")

func (failingStore) Lines(context.Context, int64) ([]Line, error) { return nil, errDown }

func TestServicePropagatesStorageErrors(t *testing.T) {
	svc := NewService(failingStore{NewMemory()}, testCatalog())
	_, err := svc.Items(context.Background(), 1)
	assert.ErrorIs(t, err, errDown)
}

func TestConcurrentUsersDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemory(), testCatalog())
	var wg sync.WaitGroup
	for uid := int64(1); uid <= 8; uid++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = svc.AddItem(ctx, uid, 1+uid%2, 1)
			}
		}(uid)
	}
	wg.Wait()
	for uid := int64(1); uid <= 8; uid++ {
		items, err := svc.Items(ctx, uid)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 25, items[0].Quantity)
	}
}
