package database

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.LinkedMemberStore = (*linkedMemberStore)(nil)

type linkedMemberStore struct{}

// ListLinkedMembers implements store.LinkedMemberStore.
func (*linkedMemberStore) ListLinkedMembers(ctx context.Context, h db.Handler, membershipID string) ([]models.LinkedMember, error) {
	m := []models.LinkedMember{}
	query := h.Rebind(`SELECT * FROM linked_members WHERE membership_id = ? ORDER BY created_at, id`)
	err := h.SelectContext(ctx, &m, query, membershipID)
	return m, err
}

// CountLinkedMembers implements store.LinkedMemberStore.
func (*linkedMemberStore) CountLinkedMembers(ctx context.Context, h db.Handler, membershipID string) (int, error) {
	var count int
	query := h.Rebind(`SELECT COUNT(*) FROM linked_members WHERE membership_id = ?`)
	err := h.GetContext(ctx, &count, query, membershipID)
	return count, err
}

// CreateLinkedMember implements store.LinkedMemberStore.
func (*linkedMemberStore) CreateLinkedMember(ctx context.Context, h db.Handler, lm models.LinkedMember) (models.LinkedMember, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO linked_members (
		  id, membership_id, first_name, last_name, date_of_birth, relationship, email, custom_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, lm.MembershipID, lm.FirstName, lm.LastName, lm.DateOfBirth, lm.Relationship, lm.Email,
		lm.CustomData.OrDefault(models.EmptyObject),
	); err != nil {
		return models.LinkedMember{}, err
	}

	var m models.LinkedMember
	err := h.GetContext(ctx, &m, h.Rebind(`SELECT * FROM linked_members WHERE id = ?`), id)
	return m, err
}

// DeleteLinkedMember implements store.LinkedMemberStore.
func (*linkedMemberStore) DeleteLinkedMember(ctx context.Context, h db.Handler, membershipID, id string) (int64, error) {
	query := h.Rebind(`DELETE FROM linked_members WHERE id = ? AND membership_id = ?`)
	return rowsAffected(ctx, h, query, id, membershipID)
}
