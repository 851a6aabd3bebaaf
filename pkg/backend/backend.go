package backend

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// Backend is the Soft Members backend that handles organizations, users,
// membership types, the membership lifecycle, workflows and the audit log.
type Backend struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	store  store.Store
	logger *log.Logger
	cache  *cache

	// now returns the current time.
	now func() time.Time
}

// New returns a new Soft Members backend.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store) *Backend {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		store:  st,
		logger: logger,
		now:    time.Now,
	}

	b.cache = newCache(b, 1000)

	return b
}

// today returns the current date in UTC.
func (d *Backend) today() time.Time {
	return Date(d.now())
}

// authorize returns an error unless the user holds the capability.
func authorize(user proto.User, c access.Capability) error {
	if user == nil {
		return proto.ErrNoToken
	}
	if !user.Role().Can(c) {
		return proto.ErrInsufficientPermissions
	}
	return nil
}

// owns reports whether the user may act on a record owned by ownerID,
// either by owning it or by holding the capability.
func owns(user proto.User, ownerID string, c access.Capability) bool {
	return user.ID() == ownerID || user.Role().Can(c)
}

// validID reports whether id is a well formed identifier.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// wrapError normalizes a store error. Missing records become notFound,
// domain errors pass through and anything else is logged.
func (d *Backend) wrapError(err error, notFound error, msg string, keyvals ...interface{}) error {
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return notFound
	}

	var perr *proto.Error
	if errors.As(err, &perr) {
		return err
	}

	d.logger.Error(msg, append(keyvals, "err", err)...)
	return err
}
