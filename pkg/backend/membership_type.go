package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
	"github.com/softmembers/soft-members/pkg/utils"
)

// CustomFieldOptions are the fields of a new custom field.
type CustomFieldOptions struct {
	FieldName       string      `json:"field_name"`
	FieldLabel      string      `json:"field_label"`
	FieldType       string      `json:"field_type"`
	FieldOptions    models.JSON `json:"field_options"`
	IsRequired      bool        `json:"is_required"`
	ValidationRules models.JSON `json:"validation_rules"`
}

func (o CustomFieldOptions) validate() error {
	if strings.TrimSpace(o.FieldName) == "" {
		return proto.Validationf("Field name is required")
	}
	if strings.TrimSpace(o.FieldLabel) == "" {
		return proto.Validationf("Field label is required")
	}
	if strings.TrimSpace(o.FieldType) == "" {
		return proto.Validationf("Field type is required")
	}
	return nil
}

func (o CustomFieldOptions) model(orgID, typeID string, order int) models.CustomField {
	return models.CustomField{
		OrganizationID:   orgID,
		MembershipTypeID: typeID,
		FieldName:        strings.TrimSpace(o.FieldName),
		FieldLabel:       strings.TrimSpace(o.FieldLabel),
		FieldType:        strings.TrimSpace(o.FieldType),
		FieldOptions:     o.FieldOptions,
		IsRequired:       o.IsRequired,
		DisplayOrder:     order,
		ValidationRules:  o.ValidationRules,
	}
}

// MembershipTypeOptions are the fields of a new membership type.
type MembershipTypeOptions struct {
	Name             string               `json:"name"`
	Slug             string               `json:"slug"`
	Description      *string              `json:"description"`
	Price            *float64             `json:"price"`
	DurationMonths   *int                 `json:"duration_months"`
	MaxMembers       *int                 `json:"max_members"`
	RequiresApproval *bool                `json:"requires_approval"`
	IsActive         *bool                `json:"is_active"`
	Settings         models.JSON          `json:"settings"`
	CustomFields     []CustomFieldOptions `json:"custom_fields"`
}

func validatePrice(price *float64) error {
	if price == nil {
		return proto.Validationf("Price is required")
	}
	if *price < 0 {
		return proto.Validationf("Price must be a positive number")
	}
	return nil
}

func validateDuration(months *int) error {
	if months == nil {
		return proto.Validationf("Duration is required")
	}
	if *months < 1 {
		return proto.Validationf("Duration must be at least 1 month")
	}
	return nil
}

func validateMaxMembers(max *int) error {
	if max != nil && *max < 1 {
		return proto.Validationf("Max members must be at least 1")
	}
	return nil
}

func (o *MembershipTypeOptions) validate() error {
	o.Name = strings.TrimSpace(o.Name)
	o.Slug = strings.TrimSpace(o.Slug)
	if o.Name == "" {
		return proto.Validationf("Name is required")
	}
	if err := utils.ValidateSlug(o.Slug); err != nil {
		return proto.Validationf("%s", err)
	}
	if err := validatePrice(o.Price); err != nil {
		return err
	}
	if err := validateDuration(o.DurationMonths); err != nil {
		return err
	}
	if err := validateMaxMembers(o.MaxMembers); err != nil {
		return err
	}
	for _, f := range o.CustomFields {
		if err := f.validate(); err != nil {
			return err
		}
	}
	return nil
}

// MembershipTypeUpdate is a partial update of a membership type. Nil
// fields are left unchanged.
type MembershipTypeUpdate struct {
	Name             *string      `json:"name,omitempty"`
	Slug             *string      `json:"slug,omitempty"`
	Description      *string      `json:"description,omitempty"`
	Price            *float64     `json:"price,omitempty"`
	DurationMonths   *int         `json:"duration_months,omitempty"`
	MaxMembers       *int         `json:"max_members,omitempty"`
	RequiresApproval *bool        `json:"requires_approval,omitempty"`
	IsActive         *bool        `json:"is_active,omitempty"`
	Settings         *models.JSON `json:"settings,omitempty"`
}

func (u MembershipTypeUpdate) patch() (store.Patch, error) {
	var p store.Patch
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, proto.Validationf("Name is required")
		}
		p.Set("name", name)
	}
	if u.Slug != nil {
		slug := strings.TrimSpace(*u.Slug)
		if err := utils.ValidateSlug(slug); err != nil {
			return nil, proto.Validationf("%s", err)
		}
		p.Set("slug", slug)
	}
	if u.Description != nil {
		p.Set("description", *u.Description)
	}
	if u.Price != nil {
		if err := validatePrice(u.Price); err != nil {
			return nil, err
		}
		p.Set("price", *u.Price)
	}
	if u.DurationMonths != nil {
		if err := validateDuration(u.DurationMonths); err != nil {
			return nil, err
		}
		p.Set("duration_months", *u.DurationMonths)
	}
	if u.MaxMembers != nil {
		if err := validateMaxMembers(u.MaxMembers); err != nil {
			return nil, err
		}
		p.Set("max_members", *u.MaxMembers)
	}
	if u.RequiresApproval != nil {
		p.Set("requires_approval", *u.RequiresApproval)
	}
	if u.IsActive != nil {
		p.Set("is_active", *u.IsActive)
	}
	if u.Settings != nil {
		p.Set("settings", u.Settings.OrDefault(models.EmptyObject))
	}
	return p, nil
}

// MembershipTypes returns the membership types of an organization ordered
// by name, each with its custom fields. A non-nil active filters on
// is_active.
func (d *Backend) MembershipTypes(ctx context.Context, orgID string, active *bool) ([]models.MembershipType, error) {
	types, err := d.store.ListMembershipTypes(ctx, d.db, orgID, active)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error listing membership types", "org", orgID)
	}

	ids := make([]string, len(types))
	for i, mt := range types {
		ids[i] = mt.ID
	}

	fields, err := d.store.ListCustomFields(ctx, d.db, ids...)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error listing custom fields", "org", orgID)
	}

	byType := make(map[string][]models.CustomField, len(types))
	for _, f := range fields {
		byType[f.MembershipTypeID] = append(byType[f.MembershipTypeID], f)
	}
	for i := range types {
		types[i].CustomFields = byType[types[i].ID]
		if types[i].CustomFields == nil {
			types[i].CustomFields = []models.CustomField{}
		}
	}

	return types, nil
}

// MembershipType returns a membership type with its custom fields.
func (d *Backend) MembershipType(ctx context.Context, id string) (models.MembershipType, error) {
	if !validID(id) {
		return models.MembershipType{}, proto.ErrMembershipTypeNotFound
	}
	if mt, ok := d.cache.Get(id); ok {
		return mt, nil
	}

	mt, err := d.membershipType(ctx, d.db, id)
	if err != nil {
		return models.MembershipType{}, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error finding membership type", "id", id)
	}

	d.cache.Set(id, mt)

	return mt, nil
}

func (d *Backend) membershipType(ctx context.Context, h db.Handler, id string) (models.MembershipType, error) {
	mt, err := d.store.GetMembershipTypeByID(ctx, h, id)
	if err != nil {
		return models.MembershipType{}, err
	}

	fields, err := d.store.ListCustomFields(ctx, h, id)
	if err != nil {
		return models.MembershipType{}, err
	}
	mt.CustomFields = fields
	if mt.CustomFields == nil {
		mt.CustomFields = []models.CustomField{}
	}

	return mt, nil
}

// CreateMembershipType creates a membership type and its custom fields in
// the user's organization. Custom fields are ordered as given.
func (d *Backend) CreateMembershipType(ctx context.Context, user proto.User, opts MembershipTypeOptions) (models.MembershipType, error) {
	if err := authorize(user, access.ManageMembershipTypes); err != nil {
		return models.MembershipType{}, err
	}
	if err := opts.validate(); err != nil {
		return models.MembershipType{}, err
	}

	orgID := user.OrganizationID()
	mt := models.MembershipType{
		OrganizationID:   orgID,
		Name:             opts.Name,
		Slug:             opts.Slug,
		Description:      opts.Description,
		Price:            *opts.Price,
		DurationMonths:   *opts.DurationMonths,
		MaxMembers:       1,
		RequiresApproval: true,
		IsActive:         true,
		Settings:         opts.Settings.OrDefault(models.EmptyObject),
	}
	if opts.MaxMembers != nil {
		mt.MaxMembers = *opts.MaxMembers
	}
	if opts.RequiresApproval != nil {
		mt.RequiresApproval = *opts.RequiresApproval
	}
	if opts.IsActive != nil {
		mt.IsActive = *opts.IsActive
	}

	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.FindMembershipTypeBySlug(ctx, tx, orgID, mt.Slug); err == nil {
			return proto.ErrSlugExists
		} else if !errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return err
		}

		var err error
		mt, err = d.store.CreateMembershipType(ctx, tx, mt)
		if err != nil {
			if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
				return proto.ErrSlugExists
			}
			return err
		}

		mt.CustomFields = make([]models.CustomField, 0, len(opts.CustomFields))
		for i, f := range opts.CustomFields {
			field, err := d.store.CreateCustomField(ctx, tx, f.model(orgID, mt.ID, i))
			if err != nil {
				return err
			}
			mt.CustomFields = append(mt.CustomFields, field)
		}

		return nil
	}); err != nil {
		return models.MembershipType{}, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error creating membership type", "slug", opts.Slug)
	}

	d.audit(ctx, user, AuditMembershipTypeCreated, "membership_type", mt.ID, map[string]interface{}{
		"name":            mt.Name,
		"slug":            mt.Slug,
		"price":           mt.Price,
		"duration_months": mt.DurationMonths,
	})

	return mt, nil
}

// UpdateMembershipType partially updates a membership type of the user's
// organization. The slug is not checked for uniqueness here; a clash
// surfaces as a conflict from the database.
func (d *Backend) UpdateMembershipType(ctx context.Context, user proto.User, id string, update MembershipTypeUpdate) (models.MembershipType, error) {
	if err := authorize(user, access.ManageMembershipTypes); err != nil {
		return models.MembershipType{}, err
	}

	patch, err := update.patch()
	if err != nil {
		return models.MembershipType{}, err
	}
	if patch.Empty() {
		return models.MembershipType{}, proto.ErrNoUpdates
	}
	if !validID(id) {
		return models.MembershipType{}, proto.ErrMembershipTypeNotFound
	}

	n, err := d.store.UpdateMembershipType(ctx, d.db, user.OrganizationID(), id, patch)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return models.MembershipType{}, proto.ErrSlugExists
		}
		return models.MembershipType{}, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error updating membership type", "id", id)
	}
	if n == 0 {
		return models.MembershipType{}, proto.ErrMembershipTypeNotFound
	}

	d.cache.Delete(id)
	mt, err := d.MembershipType(ctx, id)
	if err != nil {
		return models.MembershipType{}, err
	}

	d.audit(ctx, user, AuditMembershipTypeUpdated, "membership_type", id, update)

	return mt, nil
}

// DeleteMembershipType deletes an unused membership type and its custom
// fields.
func (d *Backend) DeleteMembershipType(ctx context.Context, user proto.User, id string) error {
	if err := authorize(user, access.DeleteMembershipTypes); err != nil {
		return err
	}
	if !validID(id) {
		return proto.ErrMembershipTypeNotFound
	}

	orgID := user.OrganizationID()
	var mt models.MembershipType
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		mt, err = d.store.GetMembershipTypeByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if mt.OrganizationID != orgID {
			return proto.ErrMembershipTypeNotFound
		}

		count, err := d.store.CountMembershipsByType(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return proto.ErrMembershipTypeInUse
		}

		if err := d.store.DeleteCustomFieldsByType(ctx, tx, id); err != nil {
			return err
		}

		_, err = d.store.DeleteMembershipType(ctx, tx, orgID, id)
		return err
	}); err != nil {
		return d.wrapError(err, proto.ErrMembershipTypeNotFound, "error deleting membership type", "id", id)
	}

	d.cache.Delete(id)
	d.audit(ctx, user, AuditMembershipTypeDeleted, "membership_type", id, map[string]interface{}{
		"name": mt.Name,
		"slug": mt.Slug,
	})

	return nil
}

// AddCustomField appends a custom field to a membership type of the user's
// organization.
func (d *Backend) AddCustomField(ctx context.Context, user proto.User, typeID string, opts CustomFieldOptions) (models.CustomField, error) {
	if err := authorize(user, access.ManageMembershipTypes); err != nil {
		return models.CustomField{}, err
	}
	if err := opts.validate(); err != nil {
		return models.CustomField{}, err
	}
	if !validID(typeID) {
		return models.CustomField{}, proto.ErrMembershipTypeNotFound
	}

	orgID := user.OrganizationID()
	var field models.CustomField
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		mt, err := d.store.GetMembershipTypeByID(ctx, tx, typeID)
		if err != nil {
			return err
		}
		if mt.OrganizationID != orgID {
			return proto.ErrMembershipTypeNotFound
		}

		order, err := d.store.NextCustomFieldOrder(ctx, tx, typeID)
		if err != nil {
			return err
		}

		field, err = d.store.CreateCustomField(ctx, tx, opts.model(orgID, typeID, order))
		return err
	}); err != nil {
		return models.CustomField{}, d.wrapError(err, proto.ErrMembershipTypeNotFound, "error adding custom field", "type", typeID)
	}

	d.cache.Delete(typeID)
	d.audit(ctx, user, AuditCustomFieldCreated, "custom_field", field.ID, map[string]interface{}{
		"membership_type_id": typeID,
		"field_name":         field.FieldName,
	})

	return field, nil
}

// DeleteCustomField deletes a custom field of a membership type. Deleting
// a missing field is not an error.
func (d *Backend) DeleteCustomField(ctx context.Context, user proto.User, typeID, fieldID string) error {
	if err := authorize(user, access.ManageMembershipTypes); err != nil {
		return err
	}
	if !validID(typeID) || !validID(fieldID) {
		return proto.ErrCustomFieldNotFound
	}

	n, err := d.store.DeleteCustomField(ctx, d.db, user.OrganizationID(), typeID, fieldID)
	if err != nil {
		return d.wrapError(err, proto.ErrCustomFieldNotFound, "error deleting custom field", "id", fieldID)
	}
	if n == 0 {
		return nil
	}

	d.cache.Delete(typeID)
	d.audit(ctx, user, AuditCustomFieldDeleted, "custom_field", fieldID, map[string]interface{}{
		"membership_type_id": typeID,
	})

	return nil
}
