package backend

import (
	"context"
	"encoding/json"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// Audit actions.
const (
	AuditUserRegistered         = "user_registered"
	AuditUserLogin              = "user_login"
	AuditUserStatusUpdated      = "user_status_updated"
	AuditMembershipTypeCreated  = "membership_type_created"
	AuditMembershipTypeUpdated  = "membership_type_updated"
	AuditMembershipTypeDeleted  = "membership_type_deleted"
	AuditCustomFieldCreated     = "custom_field_created"
	AuditCustomFieldDeleted     = "custom_field_deleted"
	AuditMembershipApproved     = "membership_approved"
	AuditMembershipRejected     = "membership_rejected"
	AuditMembershipRenewed      = "membership_renewed"
	AuditMembershipUpdated      = "membership_updated"
	AuditMembershipForceUpdated = "membership_force_updated"
	AuditMembershipExpired      = "membership_expired"
	AuditLinkedMemberAdded      = "linked_member_added"
	AuditLinkedMemberRemoved    = "linked_member_removed"
	AuditWorkflowCreated        = "workflow_created"
	AuditWorkflowUpdated        = "workflow_updated"
	AuditWorkflowDeleted        = "workflow_deleted"
)

// AuditEntry is an action to record in the audit log.
type AuditEntry struct {
	OrganizationID string
	// UserID is empty for system actions.
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	// Changes is marshaled to JSON.
	Changes interface{}
}

// LogAudit appends an entry to the audit log. The client address and user
// agent are taken from the request info in the context. Failures are
// logged and never returned.
func (d *Backend) LogAudit(ctx context.Context, e AuditEntry) {
	entry := models.AuditLogEntry{
		OrganizationID: nullString(e.OrganizationID),
		UserID:         nullString(e.UserID),
		Action:         e.Action,
		EntityType:     e.EntityType,
		EntityID:       nullString(e.EntityID),
	}

	if e.Changes != nil {
		changes, err := json.Marshal(e.Changes)
		if err != nil {
			d.logger.Error("error marshaling audit changes", "action", e.Action, "err", err)
		} else {
			entry.Changes = changes
		}
	}

	ri := proto.RequestInfoFromContext(ctx)
	entry.IPAddress = nullString(ri.IPAddress)
	entry.UserAgent = nullString(ri.UserAgent)

	if err := d.store.CreateAuditLogEntry(ctx, d.db, entry); err != nil {
		auditFailureCounter.Inc()
		d.logger.Error("error writing audit log", "action", e.Action, "entity", e.EntityType, "id", e.EntityID, "err", err)
	}
}

// audit records an action performed by the user.
func (d *Backend) audit(ctx context.Context, user proto.User, action, entityType, entityID string, changes interface{}) {
	d.LogAudit(ctx, AuditEntry{
		OrganizationID: user.OrganizationID(),
		UserID:         user.ID(),
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Changes:        changes,
	})
}

// AuditLogOptions filter and paginate the audit log.
type AuditLogOptions struct {
	store.AuditFilter
	Page  int
	Limit int
}

// AuditLog is a page of audit log entries.
type AuditLog struct {
	Entries    []models.AuditLogEntry `json:"entries"`
	Pagination Pagination             `json:"pagination"`
}

// AuditLog returns the audit log of the user's organization, newest first.
func (d *Backend) AuditLog(ctx context.Context, user proto.User, opts AuditLogOptions) (AuditLog, error) {
	if err := authorize(user, access.ViewAuditLog); err != nil {
		return AuditLog{}, err
	}

	page, limit, p := d.page(opts.Page, opts.Limit)
	orgID := user.OrganizationID()
	entries, err := d.store.ListAuditLog(ctx, d.db, orgID, opts.AuditFilter, p)
	if err != nil {
		return AuditLog{}, d.wrapError(err, proto.ErrNotFound, "error listing audit log")
	}

	total, err := d.store.CountAuditLog(ctx, d.db, orgID, opts.AuditFilter)
	if err != nil {
		return AuditLog{}, d.wrapError(err, proto.ErrNotFound, "error counting audit log")
	}

	return AuditLog{Entries: entries, Pagination: newPagination(page, limit, total)}, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
