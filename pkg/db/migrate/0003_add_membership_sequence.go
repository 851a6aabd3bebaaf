package migrate

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
)

const (
	addMembershipSequenceName    = "add membership sequence"
	addMembershipSequenceVersion = 3
)

var addMembershipSequence = Migration{
	Version: addMembershipSequenceVersion,
	Name:    addMembershipSequenceName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return migrateUp(ctx, tx, addMembershipSequenceVersion, addMembershipSequenceName)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, addMembershipSequenceVersion, addMembershipSequenceName)
	},
}
