package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/m3rciful/shopbot/core/logger"
)

// OpenSQLite opens (or creates) an embedded SQLite database at path and
// auto-migrates the given models. Use ":memory:" for a throwaway database.
func OpenSQLite(path string, models ...any) (*gorm.DB, error) {
	start := time.Now()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", "sqlite"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; keep one connection so writes never see SQLITE_BUSY.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			logger.MIG.Error("auto-migrate failed",
				slog.String("event", "db.migrate"),
				slog.String("driver", "sqlite"),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("auto-migrate sqlite: %w", err)
		}
	}

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", "sqlite"),
		slog.String("path", path),
		slog.Int("models", len(models)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return db, nil
}
