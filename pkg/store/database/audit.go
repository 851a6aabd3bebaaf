package database

import (
	"context"
	"strings"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.AuditStore = (*auditStore)(nil)

type auditStore struct{}

func auditWhere(orgID string, f store.AuditFilter) (string, []interface{}) {
	conds := []string{"al.organization_id = ?"}
	args := []interface{}{orgID}
	if f.Action != "" {
		conds = append(conds, "al.action = ?")
		args = append(args, f.Action)
	}
	if f.EntityType != "" {
		conds = append(conds, "al.entity_type = ?")
		args = append(args, f.EntityType)
	}
	if f.UserID != "" {
		conds = append(conds, "al.user_id = ?")
		args = append(args, f.UserID)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CreateAuditLogEntry implements store.AuditStore.
func (*auditStore) CreateAuditLogEntry(ctx context.Context, h db.Handler, e models.AuditLogEntry) error {
	query := h.Rebind(`
		INSERT INTO audit_log (
		  id, organization_id, user_id, action, entity_type, entity_id, changes, ip_address, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := h.ExecContext(ctx, query,
		newID(), e.OrganizationID, e.UserID, e.Action, e.EntityType, e.EntityID,
		e.Changes, e.IPAddress, e.UserAgent,
	)
	return err
}

// ListAuditLog implements store.AuditStore.
func (*auditStore) ListAuditLog(ctx context.Context, h db.Handler, orgID string, filter store.AuditFilter, page store.Page) ([]models.AuditLogEntry, error) {
	where, args := auditWhere(orgID, filter)
	query := `
		SELECT al.*, u.email AS user_email
		FROM audit_log al
		LEFT JOIN users u ON u.id = al.user_id
	` + where + ` ORDER BY al.created_at DESC, al.id LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	m := []models.AuditLogEntry{}
	err := h.SelectContext(ctx, &m, h.Rebind(query), args...)
	return m, err
}

// CountAuditLog implements store.AuditStore.
func (*auditStore) CountAuditLog(ctx context.Context, h db.Handler, orgID string, filter store.AuditFilter) (int, error) {
	where, args := auditWhere(orgID, filter)

	var count int
	err := h.GetContext(ctx, &count, h.Rebind(`SELECT COUNT(*) FROM audit_log al`+where), args...)
	return count, err
}
