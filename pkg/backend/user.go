package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/utils"
)

// MinPasswordLength is the minimum length of a password.
const MinPasswordLength = 8

type user struct {
	user models.User
}

var _ proto.User = (*user)(nil)

// ID implements proto.User.
func (u *user) ID() string {
	return u.user.ID
}

// OrganizationID implements proto.User.
func (u *user) OrganizationID() string {
	return u.user.OrganizationID
}

// Email implements proto.User.
func (u *user) Email() string {
	return u.user.Email
}

// FirstName implements proto.User.
func (u *user) FirstName() string {
	return u.user.FirstName
}

// LastName implements proto.User.
func (u *user) LastName() string {
	return u.user.LastName
}

// Role implements proto.User.
func (u *user) Role() access.Role {
	return u.user.Role
}

// IsActive implements proto.User.
func (u *user) IsActive() bool {
	return u.user.Status == models.UserStatusActive
}

// Model returns the user's row.
func (u *user) Model() models.User {
	return u.user
}

// UserModel returns the row of a user returned by the backend.
func UserModel(u proto.User) (models.User, bool) {
	if uu, ok := u.(*user); ok {
		return uu.Model(), true
	}
	return models.User{}, false
}

// UserByID finds a user by ID.
func (d *Backend) UserByID(ctx context.Context, id string) (proto.User, error) {
	if !validID(id) {
		return nil, proto.ErrUserNotFound
	}

	m, err := d.store.GetUserByID(ctx, d.db, id)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrUserNotFound, "error finding user", "id", id)
	}

	return &user{user: m}, nil
}

// UserByEmail finds a user by email address.
func (d *Backend) UserByEmail(ctx context.Context, email string) (proto.User, error) {
	m, err := d.store.FindUserByEmail(ctx, d.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, d.wrapError(err, proto.ErrUserNotFound, "error finding user", "email", email)
	}

	return &user{user: m}, nil
}

// UserFromToken verifies a session token and returns its user. Only
// active users are returned.
func (d *Backend) UserFromToken(ctx context.Context, token string) (proto.User, error) {
	claims, err := d.ParseToken(token)
	if err != nil {
		return nil, err
	}

	u, err := d.UserByID(ctx, claims.Subject)
	if errors.Is(err, proto.ErrUserNotFound) {
		return nil, proto.ErrInvalidToken
	} else if err != nil {
		return nil, err
	}

	if !u.IsActive() {
		return nil, proto.ErrAccountNotActive
	}

	return u, nil
}

// RegisterOptions are the fields of a registration.
type RegisterOptions struct {
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	Phone            *string     `json:"phone"`
	MembershipTypeID string      `json:"membership_type_id"`
	CustomData       models.JSON `json:"custom_data"`
	// OrganizationID defaults to the configured default organization.
	OrganizationID string `json:"organization_id"`
}

func (o *RegisterOptions) validate() error {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	o.FirstName = strings.TrimSpace(o.FirstName)
	o.LastName = strings.TrimSpace(o.LastName)

	if err := utils.ValidateEmail(o.Email); err != nil {
		return proto.Validationf("%s", err)
	}
	if len(o.Password) < MinPasswordLength {
		return proto.Validationf("Password must be at least %d characters", MinPasswordLength)
	}
	if o.FirstName == "" {
		return proto.Validationf("First name is required")
	}
	if o.LastName == "" {
		return proto.Validationf("Last name is required")
	}
	if o.MembershipTypeID == "" {
		return proto.Validationf("Membership type is required")
	}
	return nil
}

// Register creates a pending member and their membership application in
// one transaction.
func (d *Backend) Register(ctx context.Context, opts RegisterOptions) (proto.User, models.Membership, error) {
	if err := opts.validate(); err != nil {
		return nil, models.Membership{}, err
	}

	org, err := d.ResolveOrganization(ctx, opts.OrganizationID)
	if err != nil {
		return nil, models.Membership{}, err
	}

	if _, err := d.store.FindUserByEmail(ctx, d.db, opts.Email); err == nil {
		return nil, models.Membership{}, proto.ErrEmailExists
	} else if err = db.WrapError(err); !errors.Is(err, db.ErrRecordNotFound) {
		return nil, models.Membership{}, d.wrapError(err, proto.ErrUserNotFound, "error finding user", "email", opts.Email)
	}

	hash, err := HashPassword(opts.Password, d.cfg.Auth.BcryptCost)
	if err != nil {
		d.logger.Error("error hashing password", "err", err)
		return nil, models.Membership{}, err
	}

	var u models.User
	var m models.Membership
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		u, err = d.store.CreateUser(ctx, tx, models.User{
			OrganizationID: org.ID,
			Email:          opts.Email,
			PasswordHash:   hash,
			FirstName:      opts.FirstName,
			LastName:       opts.LastName,
			Phone:          opts.Phone,
			Role:           access.MemberRole,
			Status:         models.UserStatusPending,
		})
		if err != nil {
			if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
				return proto.ErrEmailExists
			}
			return err
		}

		m, err = d.apply(ctx, tx, org.ID, u.ID, opts.MembershipTypeID, opts.CustomData)
		return err
	}); err != nil {
		return nil, models.Membership{}, d.wrapError(err, proto.ErrInvalidMembershipType, "error registering user", "email", opts.Email)
	}

	d.LogAudit(ctx, AuditEntry{
		OrganizationID: org.ID,
		UserID:         u.ID,
		Action:         AuditUserRegistered,
		EntityType:     "user",
		EntityID:       u.ID,
		Changes:        map[string]interface{}{"email": u.Email, "membership_type_id": m.MembershipTypeID},
	})

	return &user{user: u}, m, nil
}

// Login verifies the credentials of an active user and returns a signed
// session token.
func (d *Backend) Login(ctx context.Context, email, password string) (string, proto.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, proto.ErrInvalidCredentials
	}

	m, err := d.store.FindUserByEmail(ctx, d.db, email)
	if err != nil {
		return "", nil, d.wrapError(err, proto.ErrInvalidCredentials, "error finding user", "email", email)
	}

	if !VerifyPassword(password, m.PasswordHash) {
		return "", nil, proto.ErrInvalidCredentials
	}

	u := &user{user: m}
	if !u.IsActive() {
		return "", nil, proto.ErrAccountNotActive
	}

	token, err := d.IssueToken(u)
	if err != nil {
		d.logger.Error("error issuing token", "user", u.ID(), "err", err)
		return "", nil, err
	}

	d.audit(ctx, u, AuditUserLogin, "user", u.ID(), nil)

	return token, u, nil
}

// UserOptions are the fields of a user created by an operator.
type UserOptions struct {
	OrganizationID string
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          *string
	Role           access.Role
	Status         models.UserStatus
}

// CreateUser creates a user directly, bypassing registration. It is used
// to seed administrators.
func (d *Backend) CreateUser(ctx context.Context, opts UserOptions) (proto.User, error) {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, proto.Validationf("%s", err)
	}
	if len(opts.Password) < MinPasswordLength {
		return nil, proto.Validationf("Password must be at least %d characters", MinPasswordLength)
	}
	if opts.Role < access.MemberRole || opts.Role > access.SuperAdminRole {
		return nil, access.ErrInvalidRole
	}
	if opts.Status == "" {
		opts.Status = models.UserStatusActive
	}

	org, err := d.Organization(ctx, opts.OrganizationID)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(opts.Password, d.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	m, err := d.store.CreateUser(ctx, d.db, models.User{
		OrganizationID: org.ID,
		Email:          email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(opts.FirstName),
		LastName:       strings.TrimSpace(opts.LastName),
		Phone:          opts.Phone,
		Role:           opts.Role,
		Status:         opts.Status,
	})
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return nil, proto.ErrEmailExists
		}
		return nil, d.wrapError(err, proto.ErrUserNotFound, "error creating user", "email", email)
	}

	return &user{user: m}, nil
}

// Users returns the users of an organization.
func (d *Backend) Users(ctx context.Context, orgID string) ([]proto.User, error) {
	ms, err := d.store.ListUsers(ctx, d.db, orgID)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrUserNotFound, "error listing users", "org", orgID)
	}

	users := make([]proto.User, 0, len(ms))
	for _, m := range ms {
		users = append(users, &user{user: m})
	}

	return users, nil
}

// SetUserStatus sets the account status of a user. Users that are not
// active can neither log in nor use their session tokens.
func (d *Backend) SetUserStatus(ctx context.Context, id string, status models.UserStatus) (proto.User, error) {
	if !status.Valid() {
		return nil, proto.Validationf("Invalid user status %q", status)
	}

	u, err := d.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := u.(*user).user.Status
	if err := d.store.SetUserStatus(ctx, d.db, u.ID(), status); err != nil {
		return nil, d.wrapError(err, proto.ErrUserNotFound, "error setting user status", "id", id)
	}

	d.LogAudit(ctx, AuditEntry{
		OrganizationID: u.OrganizationID(),
		Action:         AuditUserStatusUpdated,
		EntityType:     "user",
		EntityID:       u.ID(),
		Changes:        map[string]interface{}{"from": from, "status": status},
	})

	return d.UserByID(ctx, u.ID())
}
