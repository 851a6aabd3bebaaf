package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/migrate"
)

// OpenDatabase opens a new temp SQLite database with the latest schema.
// The database is closed when the test is done.
func OpenDatabase(ctx context.Context, tb testing.TB) *db.DB {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "members.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		tb.Fatalf("open database: %v", err)
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})

	if err := migrate.Migrate(ctx, dbx); err != nil {
		tb.Fatalf("migrate database: %v", err)
	}

	return dbx
}
