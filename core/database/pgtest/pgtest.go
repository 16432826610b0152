// Package pgtest opens a throwaway Postgres schema for store tests.
package pgtest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// EnvDSN names the variable holding the test database DSN.
const EnvDSN = "POSTGRES_DSN"

// Open connects to $POSTGRES_DSN, creates a fresh schema with the repository
// migrations applied and drops it when t ends. The test is skipped when the
// variable is unset. The pool holds one connection so search_path sticks.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skip(EnvDSN + " not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("pgtest: connect: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	schema := fmt.Sprintf("shopbot_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.Exec(`DROP SCHEMA IF EXISTS ` + schema + ` CASCADE`)
		_ = db.Close()
	})
	for _, stmt := range []string{
		`CREATE SCHEMA ` + schema,
		`SET search_path TO ` + schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("pgtest: %s: %v", stmt, err)
		}
	}
	for _, f := range upMigrations(t) {
		sql, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("pgtest: read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sql)); err != nil {
			t.Fatalf("pgtest: apply %s: %v", filepath.Base(f), err)
		}
	}
	return db
}

func upMigrations(t testing.TB) []string {
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("pgtest: cannot locate migrations")
	}
	dir := filepath.Join(filepath.Dir(self), "..", "..", "..", "migrations")
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil || len(files) == 0 {
		t.Fatalf("pgtest: no migrations in %s", dir)
	}
	sort.Strings(files)
	return files
}
