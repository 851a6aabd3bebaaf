// Package cmd holds the hooks shared by the members commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/flowchartsman/retry"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/migrate"
	"github.com/softmembers/soft-members/pkg/store"
	"github.com/softmembers/soft-members/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitBackendContext opens the database and stores it, the store and the
// backend in the command context. Opening the database is retried since
// the server may start before its database.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("cmd")
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	var dbx *db.DB
	retrier := retry.NewRetrier(5, 100*time.Millisecond, time.Second)
	if err := retrier.Run(func() error {
		var err error
		dbx, err = db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
		if err != nil {
			logger.Debug("open database", "driver", cfg.DB.Driver, "err", err)
		}
		return err
	}); err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be := backend.New(ctx, cfg, dbx, dbstore)
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// InitMigratedBackendContext is InitBackendContext followed by a schema
// migration.
func InitMigratedBackendContext(cmd *cobra.Command, args []string) error {
	if err := InitBackendContext(cmd, args); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// CloseDBContext closes the database context.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
