// Package database implements the store interfaces over SQL.
package database

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*organizationStore
	*userStore
	*membershipTypeStore
	*membershipStore
	*linkedMemberStore
	*workflowStore
	*auditStore
}

var _ store.Store = (*datastore)(nil)

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		organizationStore:   &organizationStore{},
		userStore:           &userStore{},
		membershipTypeStore: &membershipTypeStore{},
		membershipStore:     &membershipStore{},
		linkedMemberStore:   &linkedMemberStore{},
		workflowStore:       &workflowStore{},
		auditStore:          &auditStore{},
	}

	return s
}

// newID returns a new random identifier.
func newID() string {
	return uuid.NewString()
}

// setClause renders the assignments of a patch followed by an updated_at
// bump.
func setClause(patch store.Patch) (string, []interface{}) {
	sets := make([]string, 0, len(patch)+1)
	args := make([]interface{}, 0, len(patch))
	for _, a := range patch {
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	return strings.Join(sets, ", "), args
}

// rowsAffected returns the number of rows changed by an exec.
func rowsAffected(ctx context.Context, h db.Handler, query string, args ...interface{}) (int64, error) {
	res, err := h.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
