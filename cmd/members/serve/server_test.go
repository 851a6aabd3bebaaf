package serve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/flowchartsman/retry"
	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/store"
	"github.com/softmembers/soft-members/pkg/store/database"
	"github.com/softmembers/soft-members/pkg/test"
)

func TestServer(t *testing.T) {
	is := is.New(t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.HTTP.ListenAddr = test.ListenAddr(t)
	cfg.Stats.ListenAddr = test.ListenAddr(t)

	ctx := config.WithContext(context.Background(), cfg)
	ctx = log.WithContext(ctx, log.New(io.Discard))
	dbx := test.OpenDatabase(ctx, t)
	ctx = db.WithContext(ctx, dbx)
	st := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, st)
	ctx = backend.WithContext(ctx, backend.New(ctx, cfg, dbx, st))

	s, err := NewServer(ctx)
	is.NoErr(err)
	is.Equal(len(s.Cron.Entries()), 1) // expire-memberships

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	get := func(url string, want int) error {
		res, err := http.Get(url) // nolint: gosec, noctx
		if err != nil {
			return err
		}
		defer res.Body.Close() // nolint: errcheck
		if res.StatusCode != want {
			return fmt.Errorf("GET %s => %d, want %d", url, res.StatusCode, want)
		}
		return nil
	}

	r := retry.NewRetrier(20, 50*time.Millisecond, 500*time.Millisecond)
	is.NoErr(r.Run(func() error {
		return get("http://"+cfg.HTTP.ListenAddr+"/readyz", http.StatusOK)
	}))
	is.NoErr(r.Run(func() error {
		return get("http://"+cfg.Stats.ListenAddr+"/metrics", http.StatusOK)
	}))

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	is.NoErr(s.Shutdown(sctx))
	is.NoErr(<-errc)
}

func TestServerDisabledJob(t *testing.T) {
	is := is.New(t)

	cfg := config.DefaultConfig()
	cfg.Jobs.ExpireMemberships = ""
	ctx := config.WithContext(context.Background(), cfg)
	ctx = log.WithContext(ctx, log.New(io.Discard))
	dbx := test.OpenDatabase(ctx, t)
	st := database.New(ctx, dbx)
	ctx = db.WithContext(ctx, dbx)
	ctx = backend.WithContext(ctx, backend.New(ctx, cfg, dbx, st))

	s, err := NewServer(ctx)
	is.NoErr(err)
	is.Equal(len(s.Cron.Entries()), 0)
	is.NoErr(s.Close())
}
