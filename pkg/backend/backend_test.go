package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store/database"
	"github.com/softmembers/soft-members/pkg/test"
	"golang.org/x/crypto/bcrypt"
)

// fixture is a backend over a fresh database with one organization, an
// admin, a super admin and an "Annual" membership type.
type fixture struct {
	ctx    context.Context
	be     *Backend
	org    models.Organization
	admin  proto.User
	super  proto.User
	annual models.MembershipType
}

var testNow = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()
	is := is.New(t)

	ctx := context.TODO()
	cfg := config.DefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Organization.Default = "acme"
	ctx = config.WithContext(ctx, cfg)

	dbx := test.OpenDatabase(ctx, t)
	be := New(ctx, cfg, dbx, database.New(ctx, dbx))
	be.now = func() time.Time { return testNow }

	org, err := be.CreateOrganization(ctx, "Acme Club", "acme")
	is.NoErr(err)

	admin, err := be.CreateUser(ctx, UserOptions{
		OrganizationID: org.ID,
		Email:          "admin@acme.test",
		Password:       "password123",
		FirstName:      "Ada",
		LastName:       "Admin",
		Role:           access.AdminRole,
	})
	is.NoErr(err)

	super, err := be.CreateUser(ctx, UserOptions{
		OrganizationID: org.ID,
		Email:          "root@acme.test",
		Password:       "password123",
		FirstName:      "Sam",
		LastName:       "Super",
		Role:           access.SuperAdminRole,
	})
	is.NoErr(err)

	annual, err := be.CreateMembershipType(ctx, admin, MembershipTypeOptions{
		Name:           "Annual",
		Slug:           "annual",
		Price:          ptr(100.0),
		DurationMonths: ptr(12),
	})
	is.NoErr(err)

	return &fixture{
		ctx:    ctx,
		be:     be,
		org:    org,
		admin:  admin,
		super:  super,
		annual: annual,
	}
}

// register registers a member for the membership type and returns the
// member and their application.
func (f *fixture) register(t *testing.T, email, typeID string) (proto.User, models.Membership) {
	t.Helper()
	u, m, err := f.be.Register(f.ctx, RegisterOptions{
		Email:            email,
		Password:         "password123",
		FirstName:        "Mia",
		LastName:         "Member",
		MembershipTypeID: typeID,
	})
	if err != nil {
		t.Fatalf("Register(%q) => %v", email, err)
	}
	return u, m
}

// member registers a member and approves their membership so they can act
// as an active user.
func (f *fixture) member(t *testing.T, email string) (proto.User, models.Membership) {
	t.Helper()
	u, m := f.register(t, email, f.annual.ID)
	m, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{})
	if err != nil {
		t.Fatalf("ApproveMembership(%q) => %v", m.ID, err)
	}
	u, err = f.be.UserByID(f.ctx, u.ID())
	if err != nil {
		t.Fatalf("UserByID(%q) => %v", u.ID(), err)
	}
	return u, m
}

func (f *fixture) auditActions(t *testing.T, action string) []models.AuditLogEntry {
	t.Helper()
	log, err := f.be.AuditLog(f.ctx, f.admin, AuditLogOptions{})
	if err != nil {
		t.Fatalf("AuditLog() => %v", err)
	}
	var entries []models.AuditLogEntry
	for _, e := range log.Entries {
		if e.Action == action {
			entries = append(entries, e)
		}
	}
	return entries
}

func ptr[T any](v T) *T {
	return &v
}

func assertErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err => %v, want %v", err, want)
	}
}

func TestFromContext(t *testing.T) {
	f := setup(t)
	if b := FromContext(context.TODO()); b != nil {
		t.Errorf("FromContext() => %v, want nil", b)
	}
	ctx := WithContext(f.ctx, f.be)
	if b := FromContext(ctx); b != f.be {
		t.Errorf("FromContext() => %v, want %v", b, f.be)
	}
}
