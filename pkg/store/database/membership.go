package database

import (
	"context"
	"strings"
	"time"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.MembershipStore = (*membershipStore)(nil)

type membershipStore struct{}

const selectMembershipDetail = `
	SELECT
	  m.*,
	  u.email,
	  u.first_name,
	  u.last_name,
	  u.phone,
	  mt.name AS membership_type_name,
	  mt.duration_months,
	  a.first_name AS approver_first_name,
	  a.last_name AS approver_last_name
	FROM
	  memberships m
	  JOIN users u ON u.id = m.user_id
	  JOIN membership_types mt ON mt.id = m.membership_type_id
	  LEFT JOIN users a ON a.id = m.approved_by
`

// where renders the filter as a WHERE clause scoped to the organization.
func (f membershipFilter) where() (string, []interface{}) {
	conds := []string{"m.organization_id = ?"}
	args := []interface{}{f.orgID}
	if f.Status != "" {
		conds = append(conds, "m.status = ?")
		args = append(args, f.Status)
	}
	if f.MembershipTypeID != "" {
		conds = append(conds, "m.membership_type_id = ?")
		args = append(args, f.MembershipTypeID)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, "(LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ? OR LOWER(u.email) LIKE ?)")
		args = append(args, like, like, like)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type membershipFilter struct {
	store.MembershipFilter
	orgID string
}

// CreateMembership implements store.MembershipStore.
func (s *membershipStore) CreateMembership(ctx context.Context, h db.Handler, m models.Membership) (models.Membership, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO memberships (
		  id, organization_id, user_id, membership_type_id, status, start_date, end_date,
		  payment_status, amount_paid, notes, custom_data, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, m.OrganizationID, m.UserID, m.MembershipTypeID, m.Status, m.StartDate, m.EndDate,
		m.PaymentStatus, m.AmountPaid, m.Notes, m.CustomData.OrDefault(models.EmptyObject),
	); err != nil {
		return models.Membership{}, err
	}

	return s.GetMembershipByID(ctx, h, m.OrganizationID, id)
}

// GetMembershipByID implements store.MembershipStore.
func (*membershipStore) GetMembershipByID(ctx context.Context, h db.Handler, orgID, id string) (models.Membership, error) {
	var m models.Membership
	query := h.Rebind(`SELECT * FROM memberships WHERE id = ? AND organization_id = ?`)
	err := h.GetContext(ctx, &m, query, id, orgID)
	return m, err
}

// GetMembershipDetailByID implements store.MembershipStore.
func (*membershipStore) GetMembershipDetailByID(ctx context.Context, h db.Handler, orgID, id string) (models.MembershipDetail, error) {
	var m models.MembershipDetail
	query := h.Rebind(selectMembershipDetail + ` WHERE m.id = ? AND m.organization_id = ?`)
	err := h.GetContext(ctx, &m, query, id, orgID)
	return m, err
}

// FindLatestMembershipByUser implements store.MembershipStore.
func (*membershipStore) FindLatestMembershipByUser(ctx context.Context, h db.Handler, userID string) (models.MembershipDetail, error) {
	var m models.MembershipDetail
	query := h.Rebind(selectMembershipDetail + ` WHERE m.user_id = ? ORDER BY m.seq DESC LIMIT 1`)
	err := h.GetContext(ctx, &m, query, userID)
	return m, err
}

// ListMemberships implements store.MembershipStore.
func (*membershipStore) ListMemberships(ctx context.Context, h db.Handler, orgID string, filter store.MembershipFilter, page store.Page) ([]models.MembershipDetail, error) {
	where, args := membershipFilter{filter, orgID}.where()
	query := selectMembershipDetail + where + ` ORDER BY m.seq DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	m := []models.MembershipDetail{}
	err := h.SelectContext(ctx, &m, h.Rebind(query), args...)
	return m, err
}

// CountMemberships implements store.MembershipStore.
func (*membershipStore) CountMemberships(ctx context.Context, h db.Handler, orgID string, filter store.MembershipFilter) (int, error) {
	where, args := membershipFilter{filter, orgID}.where()
	query := `SELECT COUNT(*) FROM memberships m JOIN users u ON u.id = m.user_id` + where

	var count int
	err := h.GetContext(ctx, &count, h.Rebind(query), args...)
	return count, err
}

// ListExpiringMemberships implements store.MembershipStore.
func (*membershipStore) ListExpiringMemberships(ctx context.Context, h db.Handler, orgID, from, to string) ([]models.MembershipDetail, error) {
	query := h.Rebind(selectMembershipDetail + `
		WHERE
		  m.organization_id = ?
		  AND m.status = ?
		  AND m.end_date BETWEEN ? AND ?
		ORDER BY m.end_date
	`)

	m := []models.MembershipDetail{}
	err := h.SelectContext(ctx, &m, query, orgID, models.MembershipStatusActive, from, to)
	return m, err
}

// ListExpiredMemberships implements store.MembershipStore.
func (*membershipStore) ListExpiredMemberships(ctx context.Context, h db.Handler, before string) ([]models.Membership, error) {
	query := h.Rebind(`SELECT * FROM memberships WHERE status = ? AND end_date < ? ORDER BY end_date`)

	var m []models.Membership
	err := h.SelectContext(ctx, &m, query, models.MembershipStatusActive, before)
	return m, err
}

// CountMembershipsByType implements store.MembershipStore.
func (*membershipStore) CountMembershipsByType(ctx context.Context, h db.Handler, typeID string) (int, error) {
	var count int
	query := h.Rebind(`SELECT COUNT(*) FROM memberships WHERE membership_type_id = ?`)
	err := h.GetContext(ctx, &count, query, typeID)
	return count, err
}

// ApproveMembership implements store.MembershipStore.
func (*membershipStore) ApproveMembership(ctx context.Context, h db.Handler, id, startDate, endDate, approvedBy string, approvedAt time.Time, notes *string) (int64, error) {
	query := h.Rebind(`
		UPDATE memberships
		SET
		  status = ?,
		  start_date = ?,
		  end_date = ?,
		  approved_by = ?,
		  approved_at = ?,
		  notes = ?,
		  updated_at = CURRENT_TIMESTAMP
		WHERE
		  id = ?
		  AND status = ?
	`)
	return rowsAffected(ctx, h, query,
		models.MembershipStatusActive, startDate, endDate, approvedBy, approvedAt.UTC(), notes,
		id, models.MembershipStatusPending,
	)
}

// RejectMembership implements store.MembershipStore.
func (*membershipStore) RejectMembership(ctx context.Context, h db.Handler, id, reason string) (int64, error) {
	query := h.Rebind(`
		UPDATE memberships
		SET
		  status = ?,
		  notes = ?,
		  updated_at = CURRENT_TIMESTAMP
		WHERE
		  id = ?
		  AND status = ?
	`)
	return rowsAffected(ctx, h, query,
		models.MembershipStatusRejected, reason,
		id, models.MembershipStatusPending,
	)
}

// TransitionMembership implements store.MembershipStore.
func (*membershipStore) TransitionMembership(ctx context.Context, h db.Handler, id string, from, to models.MembershipStatus) (int64, error) {
	query := h.Rebind(`UPDATE memberships SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`)
	return rowsAffected(ctx, h, query, to, id, from)
}

// UpdateMembership implements store.MembershipStore.
func (*membershipStore) UpdateMembership(ctx context.Context, h db.Handler, orgID, id string, patch store.Patch) (int64, error) {
	set, args := setClause(patch)
	query := h.Rebind(`UPDATE memberships SET ` + set + ` WHERE id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, append(args, id, orgID)...)
}
