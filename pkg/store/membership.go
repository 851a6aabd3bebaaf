package store

import (
	"context"
	"time"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// MembershipFilter filters membership listings. Empty fields match
// everything.
type MembershipFilter struct {
	Status           string
	MembershipTypeID string
	// Search matches the owner's first name, last name or email, case
	// insensitively.
	Search string
}

// MembershipStore is a store for memberships.
type MembershipStore interface {
	CreateMembership(ctx context.Context, h db.Handler, m models.Membership) (models.Membership, error)
	GetMembershipByID(ctx context.Context, h db.Handler, orgID, id string) (models.Membership, error)
	GetMembershipDetailByID(ctx context.Context, h db.Handler, orgID, id string) (models.MembershipDetail, error)
	FindLatestMembershipByUser(ctx context.Context, h db.Handler, userID string) (models.MembershipDetail, error)
	ListMemberships(ctx context.Context, h db.Handler, orgID string, filter MembershipFilter, page Page) ([]models.MembershipDetail, error)
	CountMemberships(ctx context.Context, h db.Handler, orgID string, filter MembershipFilter) (int, error)
	ListExpiringMemberships(ctx context.Context, h db.Handler, orgID, from, to string) ([]models.MembershipDetail, error)
	ListExpiredMemberships(ctx context.Context, h db.Handler, before string) ([]models.Membership, error)
	CountMembershipsByType(ctx context.Context, h db.Handler, typeID string) (int, error)

	// ApproveMembership activates a pending membership. It returns the
	// number of rows changed, zero when the membership is no longer pending.
	ApproveMembership(ctx context.Context, h db.Handler, id, startDate, endDate, approvedBy string, approvedAt time.Time, notes *string) (int64, error)
	// RejectMembership rejects a pending membership. It returns the number
	// of rows changed, zero when the membership is no longer pending.
	RejectMembership(ctx context.Context, h db.Handler, id, reason string) (int64, error)
	// TransitionMembership moves a membership from one status to another.
	TransitionMembership(ctx context.Context, h db.Handler, id string, from, to models.MembershipStatus) (int64, error)
	UpdateMembership(ctx context.Context, h db.Handler, orgID, id string, patch Patch) (int64, error)
}
