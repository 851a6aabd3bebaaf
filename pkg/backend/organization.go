package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/utils"
)

// CreateOrganization creates a new organization.
func (d *Backend) CreateOrganization(ctx context.Context, name, slug string) (models.Organization, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" {
		return models.Organization{}, proto.Validationf("Name is required")
	}
	if err := utils.ValidateSlug(slug); err != nil {
		return models.Organization{}, proto.Validationf("%s", err)
	}

	org, err := d.store.CreateOrganization(ctx, d.db, name, slug)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return models.Organization{}, proto.ErrOrganizationExists
		}
		return models.Organization{}, d.wrapError(err, proto.ErrOrganizationNotFound, "error creating organization", "slug", slug)
	}

	return org, nil
}

// Organization finds an organization by ID or slug.
func (d *Backend) Organization(ctx context.Context, ref string) (models.Organization, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Organization{}, proto.ErrOrganizationRequired
	}

	var org models.Organization
	var err error
	if validID(ref) {
		org, err = d.store.GetOrganizationByID(ctx, d.db, ref)
	} else {
		org, err = d.store.FindOrganizationBySlug(ctx, d.db, ref)
	}
	if err != nil {
		return models.Organization{}, d.wrapError(err, proto.ErrOrganizationNotFound, "error finding organization", "ref", ref)
	}

	return org, nil
}

// Organizations returns all organizations.
func (d *Backend) Organizations(ctx context.Context) ([]models.Organization, error) {
	orgs, err := d.store.ListOrganizations(ctx, d.db)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrOrganizationNotFound, "error listing organizations")
	}

	return orgs, nil
}

// ResolveOrganization returns the organization named by ref, or the
// configured default organization when ref is empty.
func (d *Backend) ResolveOrganization(ctx context.Context, ref string) (models.Organization, error) {
	if strings.TrimSpace(ref) == "" {
		ref = d.cfg.Organization.Default
	}

	return d.Organization(ctx, ref)
}
