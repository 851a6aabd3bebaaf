package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// AuditFilter filters audit log listings. Empty fields match everything.
type AuditFilter struct {
	Action     string
	EntityType string
	UserID     string
}

// AuditStore is an append-only store for audit log entries.
type AuditStore interface {
	CreateAuditLogEntry(ctx context.Context, h db.Handler, entry models.AuditLogEntry) error
	ListAuditLog(ctx context.Context, h db.Handler, orgID string, filter AuditFilter, page Page) ([]models.AuditLogEntry, error)
	CountAuditLog(ctx context.Context, h db.Handler, orgID string, filter AuditFilter) (int, error)
}
