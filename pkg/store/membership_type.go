package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// MembershipTypeStore is a store for membership types and their custom
// fields.
type MembershipTypeStore interface {
	ListMembershipTypes(ctx context.Context, h db.Handler, orgID string, active *bool) ([]models.MembershipType, error)
	GetMembershipTypeByID(ctx context.Context, h db.Handler, id string) (models.MembershipType, error)
	FindMembershipTypeBySlug(ctx context.Context, h db.Handler, orgID, slug string) (models.MembershipType, error)
	CreateMembershipType(ctx context.Context, h db.Handler, mt models.MembershipType) (models.MembershipType, error)
	UpdateMembershipType(ctx context.Context, h db.Handler, orgID, id string, patch Patch) (int64, error)
	DeleteMembershipType(ctx context.Context, h db.Handler, orgID, id string) (int64, error)

	ListCustomFields(ctx context.Context, h db.Handler, typeIDs ...string) ([]models.CustomField, error)
	CreateCustomField(ctx context.Context, h db.Handler, field models.CustomField) (models.CustomField, error)
	NextCustomFieldOrder(ctx context.Context, h db.Handler, typeID string) (int, error)
	DeleteCustomField(ctx context.Context, h db.Handler, orgID, typeID, id string) (int64, error)
	DeleteCustomFieldsByType(ctx context.Context, h db.Handler, typeID string) error
}
