package models

import "time"

// AuditLogEntry is an append-only record of a state-changing action.
type AuditLogEntry struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID *string   `db:"organization_id" json:"organization_id"`
	UserID         *string   `db:"user_id" json:"user_id"`
	Action         string    `db:"action" json:"action"`
	EntityType     string    `db:"entity_type" json:"entity_type"`
	EntityID       *string   `db:"entity_id" json:"entity_id"`
	Changes        JSON      `db:"changes" json:"changes"`
	IPAddress      *string   `db:"ip_address" json:"ip_address"`
	UserAgent      *string   `db:"user_agent" json:"user_agent"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Populated by listings.
	UserEmail *string `db:"user_email" json:"user_email,omitempty"`
}
