package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
	"github.com/m3rciful/shopbot/core/logger"
)

// Storage backends understood by Run.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Options control the bootstrap pipeline: logger first, then the selected storage backend.
type Options struct {
	Config *coreconfig.Config

	// Backend selects the storage; empty means memory.
	Backend  string
	Database coredatabase.Config

	SQLitePath   string
	SQLiteModels []any

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
	OpenSQLite func(path string, models ...any) (*gorm.DB, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// Exactly one of DB and Gorm is set unless Backend is memory.
type Result struct {
	Backend string
	DB      *sqlx.DB
	Gorm    *gorm.DB
}

// Close releases the database handle, if any.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	if r.Gorm != nil {
		if sqlDB, err := r.Gorm.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// NormalizeBackend lowercases the backend name and applies the memory default.
func NormalizeBackend(name string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(name))
	switch b {
	case "":
		return BackendMemory, nil
	case BackendMemory, BackendPostgres, BackendSQLite:
		return b, nil
	case "postgresql", "pg":
		return BackendPostgres, nil
	}
	return "", fmt.Errorf("invalid storage backend %q; allowed: memory, postgres, sqlite", name)
}

// Run initializes the logger and opens the configured storage backend.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	backend, err := NormalizeBackend(opts.Backend)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{Backend: backend}
	switch backend {
	case BackendPostgres:
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(opts.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		res.DB = db
	case BackendSQLite:
		open := opts.OpenSQLite
		if open == nil {
			open = coredatabase.OpenSQLite
		}
		path := opts.SQLitePath
		if strings.TrimSpace(path) == "" {
			path = "shop.db"
		}
		db, err := open(path, opts.SQLiteModels...)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: sqlite initialization failed: %w", err)
		}
		res.Gorm = db
	}

	logger.DB.Info("storage ready",
		slog.String("event", "storage.ready"),
		slog.String("backend", backend),
	)
	return res, nil
}
