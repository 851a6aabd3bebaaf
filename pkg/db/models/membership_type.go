package models

import "time"

// MembershipType is a membership tier offered by an organization.
type MembershipType struct {
	ID               string    `db:"id" json:"id"`
	OrganizationID   string    `db:"organization_id" json:"organization_id"`
	Name             string    `db:"name" json:"name"`
	Slug             string    `db:"slug" json:"slug"`
	Description      *string   `db:"description" json:"description"`
	Price            float64   `db:"price" json:"price"`
	DurationMonths   int       `db:"duration_months" json:"duration_months"`
	MaxMembers       int       `db:"max_members" json:"max_members"`
	RequiresApproval bool      `db:"requires_approval" json:"requires_approval"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	Settings         JSON      `db:"settings" json:"settings"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	// CustomFields are ordered by display order.
	CustomFields []CustomField `db:"-" json:"custom_fields"`
}

// CustomField is an additional form field attached to a membership type.
type CustomField struct {
	ID               string    `db:"id" json:"id"`
	OrganizationID   string    `db:"organization_id" json:"organization_id"`
	MembershipTypeID string    `db:"membership_type_id" json:"membership_type_id"`
	FieldName        string    `db:"field_name" json:"field_name"`
	FieldLabel       string    `db:"field_label" json:"field_label"`
	FieldType        string    `db:"field_type" json:"field_type"`
	FieldOptions     JSON      `db:"field_options" json:"field_options"`
	IsRequired       bool      `db:"is_required" json:"is_required"`
	DisplayOrder     int       `db:"display_order" json:"display_order"`
	ValidationRules  JSON      `db:"validation_rules" json:"validation_rules"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
