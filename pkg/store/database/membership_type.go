package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.MembershipTypeStore = (*membershipTypeStore)(nil)

type membershipTypeStore struct{}

// ListMembershipTypes implements store.MembershipTypeStore.
func (*membershipTypeStore) ListMembershipTypes(ctx context.Context, h db.Handler, orgID string, active *bool) ([]models.MembershipType, error) {
	var m []models.MembershipType
	query := `SELECT * FROM membership_types WHERE organization_id = ?`
	args := []interface{}{orgID}
	if active != nil {
		query += ` AND is_active = ?`
		args = append(args, *active)
	}
	query += ` ORDER BY name`

	err := h.SelectContext(ctx, &m, h.Rebind(query), args...)
	return m, err
}

// GetMembershipTypeByID implements store.MembershipTypeStore.
func (*membershipTypeStore) GetMembershipTypeByID(ctx context.Context, h db.Handler, id string) (models.MembershipType, error) {
	var m models.MembershipType
	query := h.Rebind(`SELECT * FROM membership_types WHERE id = ?`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// FindMembershipTypeBySlug implements store.MembershipTypeStore.
func (*membershipTypeStore) FindMembershipTypeBySlug(ctx context.Context, h db.Handler, orgID, slug string) (models.MembershipType, error) {
	var m models.MembershipType
	query := h.Rebind(`SELECT * FROM membership_types WHERE organization_id = ? AND slug = ?`)
	err := h.GetContext(ctx, &m, query, orgID, slug)
	return m, err
}

// CreateMembershipType implements store.MembershipTypeStore.
func (s *membershipTypeStore) CreateMembershipType(ctx context.Context, h db.Handler, mt models.MembershipType) (models.MembershipType, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO membership_types (
		  id, organization_id, name, slug, description, price, duration_months,
		  max_members, requires_approval, is_active, settings, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, mt.OrganizationID, mt.Name, mt.Slug, mt.Description, mt.Price, mt.DurationMonths,
		mt.MaxMembers, mt.RequiresApproval, mt.IsActive, mt.Settings.OrDefault(models.EmptyObject),
	); err != nil {
		return models.MembershipType{}, err
	}

	return s.GetMembershipTypeByID(ctx, h, id)
}

// UpdateMembershipType implements store.MembershipTypeStore.
func (*membershipTypeStore) UpdateMembershipType(ctx context.Context, h db.Handler, orgID, id string, patch store.Patch) (int64, error) {
	set, args := setClause(patch)
	query := h.Rebind(`UPDATE membership_types SET ` + set + ` WHERE id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, append(args, id, orgID)...)
}

// DeleteMembershipType implements store.MembershipTypeStore.
func (*membershipTypeStore) DeleteMembershipType(ctx context.Context, h db.Handler, orgID, id string) (int64, error) {
	query := h.Rebind(`DELETE FROM membership_types WHERE id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, id, orgID)
}

// ListCustomFields implements store.MembershipTypeStore.
func (*membershipTypeStore) ListCustomFields(ctx context.Context, h db.Handler, typeIDs ...string) ([]models.CustomField, error) {
	if len(typeIDs) == 0 {
		return []models.CustomField{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM custom_fields
		WHERE membership_type_id IN (?)
		ORDER BY membership_type_id, display_order
	`, typeIDs)
	if err != nil {
		return nil, err
	}

	var m []models.CustomField
	err = h.SelectContext(ctx, &m, h.Rebind(query), args...)
	return m, err
}

// CreateCustomField implements store.MembershipTypeStore.
func (*membershipTypeStore) CreateCustomField(ctx context.Context, h db.Handler, field models.CustomField) (models.CustomField, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO custom_fields (
		  id, organization_id, membership_type_id, field_name, field_label, field_type,
		  field_options, is_required, display_order, validation_rules
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, field.OrganizationID, field.MembershipTypeID, field.FieldName, field.FieldLabel, field.FieldType,
		field.FieldOptions, field.IsRequired, field.DisplayOrder, field.ValidationRules,
	); err != nil {
		return models.CustomField{}, err
	}

	var m models.CustomField
	err := h.GetContext(ctx, &m, h.Rebind(`SELECT * FROM custom_fields WHERE id = ?`), id)
	return m, err
}

// NextCustomFieldOrder implements store.MembershipTypeStore.
func (*membershipTypeStore) NextCustomFieldOrder(ctx context.Context, h db.Handler, typeID string) (int, error) {
	var next int
	query := h.Rebind(`SELECT COALESCE(MAX(display_order), -1) + 1 FROM custom_fields WHERE membership_type_id = ?`)
	err := h.GetContext(ctx, &next, query, typeID)
	return next, err
}

// DeleteCustomField implements store.MembershipTypeStore.
func (*membershipTypeStore) DeleteCustomField(ctx context.Context, h db.Handler, orgID, typeID, id string) (int64, error) {
	query := h.Rebind(`DELETE FROM custom_fields WHERE id = ? AND membership_type_id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, id, typeID, orgID)
}

// DeleteCustomFieldsByType implements store.MembershipTypeStore.
func (*membershipTypeStore) DeleteCustomFieldsByType(ctx context.Context, h db.Handler, typeID string) error {
	query := h.Rebind(`DELETE FROM custom_fields WHERE membership_type_id = ?`)
	_, err := h.ExecContext(ctx, query, typeID)
	return err
}
