package jobs

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/config"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store/database"
	"github.com/softmembers/soft-members/pkg/test"
	"golang.org/x/crypto/bcrypt"
)

func TestRegistered(t *testing.T) {
	is := is.New(t)
	names := Names()
	is.True(len(names) >= 1)

	j, ok := List()[ExpireMembershipsJob]
	is.True(ok)

	cfg := config.DefaultConfig()
	is.Equal(j.Runner.Spec(config.WithContext(context.TODO(), cfg)), "@daily")

	cfg.Jobs.ExpireMemberships = "0 3 * * *"
	is.Equal(j.Runner.Spec(config.WithContext(context.TODO(), cfg)), "0 3 * * *")
	is.Equal(j.Runner.Spec(context.TODO()), "")
}

func TestExpireMemberships(t *testing.T) {
	is := is.New(t)

	ctx := context.TODO()
	cfg := config.DefaultConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Organization.Default = "acme"
	ctx = config.WithContext(ctx, cfg)
	ctx = log.WithContext(ctx, log.New(io.Discard))

	dbx := test.OpenDatabase(ctx, t)
	be := backend.New(ctx, cfg, dbx, database.New(ctx, dbx))
	ctx = backend.WithContext(ctx, be)

	org, err := be.CreateOrganization(ctx, "Acme Club", "acme")
	is.NoErr(err)
	admin, err := be.CreateUser(ctx, backend.UserOptions{
		OrganizationID: org.ID,
		Email:          "admin@acme.test",
		Password:       "password123",
		Role:           access.AdminRole,
	})
	is.NoErr(err)

	price, months := 10.0, 12
	mt, err := be.CreateMembershipType(ctx, admin, backend.MembershipTypeOptions{
		Name:           "Annual",
		Slug:           "annual",
		Price:          &price,
		DurationMonths: &months,
	})
	is.NoErr(err)

	_, m, err := be.Register(ctx, backend.RegisterOptions{
		Email:            "mia@example.com",
		Password:         "password123",
		FirstName:        "Mia",
		LastName:         "Member",
		MembershipTypeID: mt.ID,
	})
	is.NoErr(err)

	start, end := "2020-01-01", "2020-12-31"
	_, err = be.ApproveMembership(ctx, admin, m.ID, backend.ApproveOptions{StartDate: &start, EndDate: &end})
	is.NoErr(err)

	List()[ExpireMembershipsJob].Runner.Func(ctx)()

	got, err := be.Membership(ctx, admin, m.ID)
	is.NoErr(err)
	is.Equal(got.Status, models.MembershipStatusExpired)
}
