package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// OrganizationStore is a store for organizations.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, h db.Handler, name, slug string) (models.Organization, error)
	GetOrganizationByID(ctx context.Context, h db.Handler, id string) (models.Organization, error)
	FindOrganizationBySlug(ctx context.Context, h db.Handler, slug string) (models.Organization, error)
	ListOrganizations(ctx context.Context, h db.Handler) ([]models.Organization, error)
}
