package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
)

func noopLogger(*coreconfig.Config) error { return nil }

func TestNormalizeBackend(t *testing.T) {
	cases := map[string]string{
		"":         BackendMemory,
		" Memory ": BackendMemory,
		"pg":       BackendPostgres,
		"POSTGRES": BackendPostgres,
		"sqlite":   BackendSQLite,
	}
	for in, want := range cases {
		got, err := NormalizeBackend(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeBackend("mongo")
	assert.Error(t, err)
}

func TestRunMemorySkipsDatabase(t *testing.T) {
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noopLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not be called for memory backend")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, res.Backend)
	assert.Nil(t, res.DB)
	assert.Nil(t, res.Gorm)
	assert.NoError(t, res.Close())
}

func TestRunPostgresConnectFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Backend:    BackendPostgres,
		LoggerInit: noopLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunSQLitePassesModels(t *testing.T) {
	type model struct{ ID int64 }
	var gotPath string
	var gotModels int
	res, err := Run(Options{
		Config:       &coreconfig.Config{},
		Backend:      BackendSQLite,
		SQLiteModels: []any{&model{}},
		LoggerInit:   noopLogger,
		OpenSQLite: func(path string, models ...any) (*gorm.DB, error) {
			gotPath = path
			gotModels = len(models)
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, res.Backend)
	assert.Equal(t, "shop.db", gotPath)
	assert.Equal(t, 1, gotModels)
}

func TestRunRejectsNilConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}

func TestRunSeedersStopsOnError(t *testing.T) {
	var calls []int
	boom := errors.New("boom")
	err := RunSeeders(context.Background(),
		SeederFunc(func(context.Context) error { calls = append(calls, 1); return nil }),
		nil,
		SeederFunc(func(context.Context) error { calls = append(calls, 2); return boom }),
		SeederFunc(func(context.Context) error { calls = append(calls, 3); return nil }),
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, calls)
}
