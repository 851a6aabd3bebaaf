package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/internal/test"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := db.Open(context.TODO(), "invalid", "")
	if err == nil {
		t.Fatal("Open(invalid) => nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("Open(invalid) => %v, want error containing 'unknown driver'", err)
	}
}

func TestBadFromContext(t *testing.T) {
	ctx := context.TODO()
	if c := db.FromContext(ctx); c != nil {
		t.Errorf("FromContext(ctx) => %v, want %v", c, nil)
	}
}

func TestGoodFromContext(t *testing.T) {
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	if err != nil {
		t.Fatal(err)
	}
	ctx = db.WithContext(ctx, dbx)
	if c := db.FromContext(ctx); c == nil {
		t.Errorf("FromContext(ctx) => %v, want %v", c, dbx)
	}
}

func setupCounters(ctx context.Context, t *testing.T) *db.DB {
	t.Helper()
	is := is.New(t)
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `CREATE TABLE counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL)`)
	is.NoErr(err)
	return dbx
}

func TestTransactionCommit(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx := setupCounters(ctx, t)

	is.NoErr(dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO counters (name, value) VALUES (?, ?)`), "a", 1)
		return err
	}))

	var value int
	is.NoErr(dbx.GetContext(ctx, &value, `SELECT value FROM counters WHERE name = 'a'`))
	is.Equal(value, 1)
}

func TestTransactionRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx := setupCounters(ctx, t)

	errBoom := errors.New("boom")
	err := dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO counters (name, value) VALUES (?, ?)`), "a", 1); err != nil {
			return err
		}
		return errBoom
	})
	is.True(errors.Is(err, errBoom))

	var count int
	is.NoErr(dbx.GetContext(ctx, &count, `SELECT COUNT(*) FROM counters`))
	is.Equal(count, 0)
}

func TestWrapErrorSqliteUnique(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx := setupCounters(ctx, t)

	_, err := dbx.ExecContext(ctx, `INSERT INTO counters (name, value) VALUES ('a', 1)`)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `INSERT INTO counters (name, value) VALUES ('a', 2)`)
	is.Equal(db.WrapError(err), db.ErrDuplicateKey)
}
