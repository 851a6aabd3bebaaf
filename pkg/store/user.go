package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// UserStore is an interface for managing users.
type UserStore interface {
	CreateUser(ctx context.Context, h db.Handler, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, h db.Handler, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	ListUsers(ctx context.Context, h db.Handler, orgID string) ([]models.User, error)
	SetUserStatus(ctx context.Context, h db.Handler, id string, status models.UserStatus) error
}
