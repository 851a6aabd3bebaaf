package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// LinkedMemberStore is a store for the dependents of a membership.
type LinkedMemberStore interface {
	ListLinkedMembers(ctx context.Context, h db.Handler, membershipID string) ([]models.LinkedMember, error)
	CountLinkedMembers(ctx context.Context, h db.Handler, membershipID string) (int, error)
	CreateLinkedMember(ctx context.Context, h db.Handler, lm models.LinkedMember) (models.LinkedMember, error)
	DeleteLinkedMember(ctx context.Context, h db.Handler, membershipID, id string) (int64, error)
}
