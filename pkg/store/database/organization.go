package database

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.OrganizationStore = (*organizationStore)(nil)

type organizationStore struct{}

// CreateOrganization implements store.OrganizationStore.
func (s *organizationStore) CreateOrganization(ctx context.Context, h db.Handler, name, slug string) (models.Organization, error) {
	id := newID()
	query := h.Rebind(`INSERT INTO organizations (id, name, slug, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`)
	if _, err := h.ExecContext(ctx, query, id, name, slug); err != nil {
		return models.Organization{}, err
	}

	return s.GetOrganizationByID(ctx, h, id)
}

// GetOrganizationByID implements store.OrganizationStore.
func (*organizationStore) GetOrganizationByID(ctx context.Context, h db.Handler, id string) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE id = ?`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// FindOrganizationBySlug implements store.OrganizationStore.
func (*organizationStore) FindOrganizationBySlug(ctx context.Context, h db.Handler, slug string) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE slug = ?`)
	err := h.GetContext(ctx, &m, query, slug)
	return m, err
}

// ListOrganizations implements store.OrganizationStore.
func (*organizationStore) ListOrganizations(ctx context.Context, h db.Handler) ([]models.Organization, error) {
	var m []models.Organization
	err := h.SelectContext(ctx, &m, `SELECT * FROM organizations ORDER BY name`)
	return m, err
}
