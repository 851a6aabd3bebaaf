package database

import (
	"context"
	"strings"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.UserStore = (*userStore)(nil)

type userStore struct{}

// CreateUser implements store.UserStore.
func (s *userStore) CreateUser(ctx context.Context, h db.Handler, user models.User) (models.User, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO users (id, organization_id, email, password_hash, first_name, last_name, phone, role, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, user.OrganizationID, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.Phone, user.Role, user.Status,
	); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(ctx, h, id)
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, h db.Handler, id string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE id = ?`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// FindUserByEmail implements store.UserStore.
func (*userStore) FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE email = ?`)
	err := h.GetContext(ctx, &m, query, strings.ToLower(email))
	return m, err
}

// ListUsers implements store.UserStore.
func (*userStore) ListUsers(ctx context.Context, h db.Handler, orgID string) ([]models.User, error) {
	var m []models.User
	query := h.Rebind(`SELECT * FROM users WHERE organization_id = ? ORDER BY created_at`)
	err := h.SelectContext(ctx, &m, query, orgID)
	return m, err
}

// SetUserStatus implements store.UserStore.
func (*userStore) SetUserStatus(ctx context.Context, h db.Handler, id string, status models.UserStatus) error {
	query := h.Rebind(`UPDATE users SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	_, err := h.ExecContext(ctx, query, status, id)
	return err
}
