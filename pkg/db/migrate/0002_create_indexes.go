package migrate

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
)

const (
	createIndexesName    = "create indexes"
	createIndexesVersion = 2
)

var createIndexes = Migration{
	Version: createIndexesVersion,
	Name:    createIndexesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return migrateUp(ctx, tx, createIndexesVersion, createIndexesName)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, createIndexesVersion, createIndexesName)
	},
}
