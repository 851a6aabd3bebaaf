package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/softmembers/soft-members/cmd"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/migrate"
	"github.com/spf13/cobra"
)

// Command is the serve command.
var Command = &cobra.Command{
	Use:                "serve",
	Short:              "Start the server",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := config.FromContext(ctx)
		logger := log.FromContext(ctx).WithPrefix("serve")

		// The first run writes a config file with a fresh signing secret.
		if !cfg.Exist() {
			if cfg.Auth.JWTSecret == "" {
				cfg.Auth.JWTSecret = backend.GenerateSecret()
			}
			if err := cfg.WriteConfig(); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			logger.Info("wrote config file", "path", cfg.ConfigPath())
		}

		if cfg.Auth.JWTSecret == "" {
			return backend.ErrMissingSecret
		}

		if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		s, err := NewServer(ctx)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		lch := make(chan error, 1)
		done := make(chan os.Signal, 1)
		var doneOnce sync.Once
		stop := func() { doneOnce.Do(func() { close(done) }) }

		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			lch <- s.Start()
			stop()
		}()

		select {
		case err := <-lch:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-done:
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			s.Close() // nolint: errcheck
			return err
		}

		return nil
	},
}
