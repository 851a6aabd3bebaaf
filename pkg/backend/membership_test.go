package backend

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

func TestApproveAndRenewAnnual(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	u, m := f.register(t, "mia@example.com", f.annual.ID)

	approved, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{Notes: ptr("welcome")})
	is.NoErr(err)
	is.Equal(approved.Status, models.MembershipStatusActive)
	is.Equal(*approved.StartDate, "2024-01-15")
	is.Equal(*approved.EndDate, "2025-01-15")
	is.Equal(*approved.ApprovedBy, f.admin.ID())
	is.True(approved.ApprovedAt != nil)
	is.Equal(*approved.Notes, "welcome")

	owner, err := f.be.UserByID(f.ctx, u.ID())
	is.NoErr(err)
	is.True(owner.IsActive())

	renewal, err := f.be.RenewMembership(f.ctx, owner, m.ID)
	is.NoErr(err)
	is.True(renewal.ID != m.ID)
	is.Equal(renewal.Status, models.MembershipStatusPending)
	is.Equal(renewal.PaymentStatus, models.PaymentStatusUnpaid)
	is.Equal(*renewal.StartDate, "2025-01-16")
	is.Equal(*renewal.EndDate, "2026-01-16")
	is.Equal(renewal.AmountPaid, 100.0)
	is.Equal(renewal.UserID, u.ID())

	source, err := f.be.Membership(f.ctx, f.admin, m.ID)
	is.NoErr(err)
	is.Equal(source.Status, models.MembershipStatusActive)
	is.Equal(*source.StartDate, "2024-01-15")
	is.Equal(*source.EndDate, "2025-01-15")

	list, err := f.be.Memberships(f.ctx, f.admin, MembershipListOptions{})
	is.NoErr(err)
	is.Equal(list.Pagination.Total, 2)

	approvals := f.auditActions(t, AuditMembershipApproved)
	is.Equal(len(approvals), 1)
	is.Equal(*approvals[0].EntityID, m.ID)
	is.Equal(string(approvals[0].Changes), `{"end_date":"2025-01-15","start_date":"2024-01-15","status":"active"}`)

	renewals := f.auditActions(t, AuditMembershipRenewed)
	is.Equal(len(renewals), 1)
	is.Equal(*renewals[0].EntityID, renewal.ID)
}

func TestApproveTwice(t *testing.T) {
	f := setup(t)
	_, m := f.register(t, "mia@example.com", f.annual.ID)

	if _, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{})
	assertErr(t, err, proto.ErrMembershipNotPending)
	assertErr(t, err, proto.ErrConflict)
}

func TestApproveIsConditional(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	_, m := f.member(t, "mia@example.com")

	// A second approval that raced past the status check changes nothing.
	n, err := f.be.store.ApproveMembership(f.ctx, f.be.db, m.ID, "2030-01-01", "2031-01-01", f.admin.ID(), testNow, nil)
	is.NoErr(err)
	is.Equal(n, int64(0))

	n, err = f.be.store.RejectMembership(f.ctx, f.be.db, m.ID, "late")
	is.NoErr(err)
	is.Equal(n, int64(0))

	got, err := f.be.Membership(f.ctx, f.admin, m.ID)
	is.NoErr(err)
	is.Equal(*got.StartDate, "2024-01-15")
	is.Equal(got.Status, models.MembershipStatusActive)
}

func TestApproveDates(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	_, m := f.register(t, "a@example.com", f.annual.ID)
	approved, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{StartDate: ptr("2024-01-31")})
	is.NoErr(err)
	is.Equal(*approved.EndDate, "2025-01-31")

	monthly, err := f.be.CreateMembershipType(f.ctx, f.admin, MembershipTypeOptions{
		Name:           "Monthly",
		Slug:           "monthly",
		Price:          ptr(10.0),
		DurationMonths: ptr(1),
	})
	is.NoErr(err)

	_, m = f.register(t, "b@example.com", monthly.ID)
	approved, err = f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{StartDate: ptr("2024-01-31")})
	is.NoErr(err)
	is.Equal(*approved.EndDate, "2024-02-29")

	_, m = f.register(t, "c@example.com", monthly.ID)
	approved, err = f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{
		StartDate: ptr("2024-06-01"),
		EndDate:   ptr("2024-12-31"),
	})
	is.NoErr(err)
	is.Equal(*approved.EndDate, "2024-12-31")

	_, m = f.register(t, "d@example.com", monthly.ID)
	_, err = f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{StartDate: ptr("01/06/2024")})
	assertErr(t, err, proto.ErrValidation)

	_, err = f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{
		StartDate: ptr("2024-06-01"),
		EndDate:   ptr("2024-05-01"),
	})
	assertErr(t, err, proto.ErrValidation)

	pending, err := f.be.Membership(f.ctx, f.admin, m.ID)
	is.NoErr(err)
	is.Equal(pending.Status, models.MembershipStatusPending)
}

func TestApprovePermissions(t *testing.T) {
	f := setup(t)
	member, _ := f.member(t, "mia@example.com")
	_, m := f.register(t, "other@example.com", f.annual.ID)

	_, err := f.be.ApproveMembership(f.ctx, member, m.ID, ApproveOptions{})
	assertErr(t, err, proto.ErrInsufficientPermissions)

	_, err = f.be.ApproveMembership(f.ctx, nil, m.ID, ApproveOptions{})
	assertErr(t, err, proto.ErrNoToken)

	_, err = f.be.ApproveMembership(f.ctx, f.admin, "not-a-uuid", ApproveOptions{})
	assertErr(t, err, proto.ErrMembershipNotFound)

	_, err = f.be.ApproveMembership(f.ctx, f.admin, "2f1b8a4e-7c36-4c3e-9d55-3c8a3f0a1b2c", ApproveOptions{})
	assertErr(t, err, proto.ErrMembershipNotFound)
}

func TestApproveOtherOrganization(t *testing.T) {
	f := setup(t)
	_, m := f.register(t, "mia@example.com", f.annual.ID)

	other, err := f.be.CreateOrganization(f.ctx, "Other Club", "other")
	if err != nil {
		t.Fatal(err)
	}
	otherAdmin, err := f.be.CreateUser(f.ctx, UserOptions{
		OrganizationID: other.ID,
		Email:          "admin@other.test",
		Password:       "password123",
		Role:           f.admin.Role(),
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.be.ApproveMembership(f.ctx, otherAdmin, m.ID, ApproveOptions{})
	assertErr(t, err, proto.ErrMembershipNotFound)
}

func TestReject(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	u, m := f.register(t, "mia@example.com", f.annual.ID)
	rejected, err := f.be.RejectMembership(f.ctx, f.admin, m.ID, "incomplete application")
	is.NoErr(err)
	is.Equal(rejected.Status, models.MembershipStatusRejected)
	is.Equal(*rejected.Notes, "incomplete application")

	owner, err := f.be.UserByID(f.ctx, u.ID())
	is.NoErr(err)
	is.True(!owner.IsActive())

	_, err = f.be.RejectMembership(f.ctx, f.admin, m.ID, "again")
	assertErr(t, err, proto.ErrMembershipNotPending)

	_, err = f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{})
	assertErr(t, err, proto.ErrMembershipNotPending)

	entries := f.auditActions(t, AuditMembershipRejected)
	is.Equal(len(entries), 1)
	is.Equal(string(entries[0].Changes), `{"reason":"incomplete application","status":"rejected"}`)
}

func TestRejectActive(t *testing.T) {
	f := setup(t)
	_, m := f.member(t, "mia@example.com")

	_, err := f.be.RejectMembership(f.ctx, f.admin, m.ID, "too late")
	assertErr(t, err, proto.ErrMembershipNotPending)
}

func TestRenew(t *testing.T) {
	f := setup(t)
	member, m := f.member(t, "mia@example.com")
	other, _ := f.member(t, "other@example.com")

	_, err := f.be.RenewMembership(f.ctx, other, m.ID)
	assertErr(t, err, proto.ErrAccessDenied)

	if _, err := f.be.RenewMembership(f.ctx, f.admin, m.ID); err != nil {
		t.Errorf("admin RenewMembership() => %v", err)
	}

	_, pending := f.register(t, "pending@example.com", f.annual.ID)
	_, err = f.be.RenewMembership(f.ctx, f.admin, pending.ID)
	assertErr(t, err, proto.ErrMembershipNotRenewable)

	_, err = f.be.RenewMembership(f.ctx, member, "8d2f8c1e-0b7a-4d8e-a1c3-5f6e7d8c9b0a")
	assertErr(t, err, proto.ErrMembershipNotFound)
}

func TestMembershipAccess(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")
	other, om := f.member(t, "other@example.com")

	got, err := f.be.Membership(f.ctx, member, m.ID)
	is.NoErr(err)
	is.Equal(got.ID, m.ID)
	is.Equal(got.Email, "mia@example.com")
	is.Equal(got.MembershipTypeName, "Annual")
	is.Equal(*got.ApproverFirstName, "Ada")
	is.Equal(len(got.LinkedMembers), 0)

	_, err = f.be.Membership(f.ctx, other, m.ID)
	assertErr(t, err, proto.ErrAccessDenied)

	_, err = f.be.Membership(f.ctx, f.admin, om.ID)
	is.NoErr(err)

	_, err = f.be.Memberships(f.ctx, member, MembershipListOptions{})
	assertErr(t, err, proto.ErrInsufficientPermissions)
}

func TestCurrentMembership(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")
	cur, err := f.be.CurrentMembership(f.ctx, member)
	is.NoErr(err)
	is.Equal(cur.ID, m.ID)

	_, err = f.be.CurrentMembership(f.ctx, f.admin)
	assertErr(t, err, proto.ErrNoMembership)
}

func TestCurrentMembershipSameTimestamp(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")
	latest := m
	for i := 0; i < 5; i++ {
		r, err := f.be.RenewMembership(f.ctx, member, m.ID)
		is.NoErr(err)
		latest = r
	}

	// Rows created within the same instant are still ordered by insertion.
	_, err := f.be.db.ExecContext(f.ctx, f.be.db.Rebind(`UPDATE memberships SET created_at = ? WHERE user_id = ?`),
		testNow, member.ID())
	is.NoErr(err)

	cur, err := f.be.CurrentMembership(f.ctx, member)
	is.NoErr(err)
	is.Equal(cur.ID, latest.ID)

	list, err := f.be.Memberships(f.ctx, f.admin, MembershipListOptions{})
	is.NoErr(err)
	is.Equal(list.Memberships[0].ID, latest.ID)
	is.Equal(list.Memberships[len(list.Memberships)-1].ID, m.ID)
}

func TestUpdateMembership(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")

	updated, err := f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{
		PaymentStatus: ptr("paid"),
		AmountPaid:    ptr(100.0),
		Notes:         ptr("paid in cash"),
	})
	is.NoErr(err)
	is.Equal(updated.PaymentStatus, "paid")
	is.Equal(updated.AmountPaid, 100.0)
	is.Equal(updated.Status, models.MembershipStatusActive)

	_, err = f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{})
	assertErr(t, err, proto.ErrNoUpdates)

	_, err = f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{Status: ptr(models.MembershipStatus("cancelled"))})
	assertErr(t, err, proto.ErrValidation)

	_, err = f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{EndDate: ptr("next year")})
	assertErr(t, err, proto.ErrValidation)

	_, err = f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{Status: ptr(models.MembershipStatusPending)})
	assertErr(t, err, proto.ErrInvalidTransition)

	_, err = f.be.UpdateMembership(f.ctx, member, m.ID, MembershipUpdate{Notes: ptr("mine")})
	assertErr(t, err, proto.ErrInsufficientPermissions)

	forced, err := f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{
		Status: ptr(models.MembershipStatusPending),
		Force:  true,
	})
	is.NoErr(err)
	is.Equal(forced.Status, models.MembershipStatusPending)

	_, err = f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{Status: ptr(models.MembershipStatusRejected)})
	assertErr(t, err, proto.ErrPendingTransition)

	_, em := f.member(t, "ended@example.com")
	ended, err := f.be.UpdateMembership(f.ctx, f.admin, em.ID, MembershipUpdate{Status: ptr(models.MembershipStatusExpired)})
	is.NoErr(err)
	is.Equal(ended.Status, models.MembershipStatusExpired)

	is.Equal(len(f.auditActions(t, AuditMembershipUpdated)), 2)
	forcedEntries := f.auditActions(t, AuditMembershipForceUpdated)
	is.Equal(len(forcedEntries), 1)
	is.Equal(string(forcedEntries[0].Changes), `{"status":"pending","force":true}`)
}

func TestUpdateMembershipCannotApprove(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	u, m := f.register(t, "mia@example.com", f.annual.ID)

	for _, status := range []models.MembershipStatus{models.MembershipStatusActive, models.MembershipStatusRejected} {
		_, err := f.be.UpdateMembership(f.ctx, f.admin, m.ID, MembershipUpdate{Status: ptr(status)})
		assertErr(t, err, proto.ErrPendingTransition)
	}

	got, err := f.be.Membership(f.ctx, f.admin, m.ID)
	is.NoErr(err)
	is.Equal(got.Status, models.MembershipStatusPending)
	is.Equal(got.StartDate, nil)
	is.Equal(got.ApprovedBy, nil)

	owner, err := f.be.UserByID(f.ctx, u.ID())
	is.NoErr(err)
	is.True(!owner.IsActive())
	is.Equal(len(f.auditActions(t, AuditMembershipUpdated)), 0)

	// Approving still works afterwards.
	approved, err := f.be.ApproveMembership(f.ctx, f.admin, m.ID, ApproveOptions{})
	is.NoErr(err)
	is.Equal(*approved.EndDate, "2025-01-15")
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.MembershipStatus
		want     bool
	}{
		{models.MembershipStatusPending, models.MembershipStatusActive, false},
		{models.MembershipStatusPending, models.MembershipStatusRejected, false},
		{models.MembershipStatusPending, models.MembershipStatusPending, true},
		{models.MembershipStatusActive, models.MembershipStatusExpired, true},
		{models.MembershipStatusActive, models.MembershipStatusActive, true},
		{models.MembershipStatusActive, models.MembershipStatusPending, false},
		{models.MembershipStatusRejected, models.MembershipStatusActive, false},
		{models.MembershipStatusExpired, models.MembershipStatusActive, false},
		{models.MembershipStatusPending, models.MembershipStatusExpired, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) => %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestExpireMemberships(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	_, m := f.member(t, "mia@example.com")
	_, fresh := f.register(t, "fresh@example.com", f.annual.ID)
	_, err := f.be.ApproveMembership(f.ctx, f.admin, fresh.ID, ApproveOptions{StartDate: ptr("2024-06-01")})
	is.NoErr(err)

	expired, err := f.be.ExpireMemberships(f.ctx)
	is.NoErr(err)
	is.Equal(len(expired), 0)

	// The day after the first membership ends.
	f.be.now = func() time.Time { return time.Date(2025, time.January, 16, 3, 0, 0, 0, time.UTC) }
	expired, err = f.be.ExpireMemberships(f.ctx)
	is.NoErr(err)
	is.Equal(len(expired), 1)
	is.Equal(expired[0].ID, m.ID)

	got, err := f.be.Membership(f.ctx, f.admin, m.ID)
	is.NoErr(err)
	is.Equal(got.Status, models.MembershipStatusExpired)

	expired, err = f.be.ExpireMemberships(f.ctx)
	is.NoErr(err)
	is.Equal(len(expired), 0)

	entries := f.auditActions(t, AuditMembershipExpired)
	is.Equal(len(entries), 1)
	is.Equal(entries[0].UserID, nil)
	is.Equal(*entries[0].EntityID, m.ID)
}

func TestExpiringMemberships(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	_, soon := f.register(t, "soon@example.com", f.annual.ID)
	_, err := f.be.ApproveMembership(f.ctx, f.admin, soon.ID, ApproveOptions{
		StartDate: ptr("2023-02-01"),
		EndDate:   ptr("2024-02-01"),
	})
	is.NoErr(err)

	_, sooner := f.register(t, "sooner@example.com", f.annual.ID)
	_, err = f.be.ApproveMembership(f.ctx, f.admin, sooner.ID, ApproveOptions{
		StartDate: ptr("2023-01-20"),
		EndDate:   ptr("2024-01-20"),
	})
	is.NoErr(err)

	_, today := f.register(t, "today@example.com", f.annual.ID)
	_, err = f.be.ApproveMembership(f.ctx, f.admin, today.ID, ApproveOptions{
		StartDate: ptr("2023-01-15"),
		EndDate:   ptr("2024-01-15"),
	})
	is.NoErr(err)

	f.member(t, "later@example.com")
	f.register(t, "pending@example.com", f.annual.ID)

	ms, err := f.be.ExpiringMemberships(f.ctx, f.admin, nil)
	is.NoErr(err)
	is.Equal(len(ms), 3)
	is.Equal(ms[0].ID, today.ID)
	is.Equal(ms[1].ID, sooner.ID)
	is.Equal(ms[2].ID, soon.ID)

	ms, err = f.be.ExpiringMemberships(f.ctx, f.admin, ptr(7))
	is.NoErr(err)
	is.Equal(len(ms), 2)

	ms, err = f.be.ExpiringMemberships(f.ctx, f.admin, ptr(0))
	is.NoErr(err)
	is.Equal(len(ms), 1)
	is.Equal(ms[0].ID, today.ID)

	_, err = f.be.ExpiringMemberships(f.ctx, f.admin, ptr(-1))
	assertErr(t, err, proto.ErrValidation)

	member, _ := f.member(t, "member@example.com")
	_, err = f.be.ExpiringMemberships(f.ctx, member, nil)
	assertErr(t, err, proto.ErrInsufficientPermissions)
}

func TestMembershipsListing(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	for _, email := range []string{"ann@example.com", "bob@example.com", "cleo@example.com"} {
		f.register(t, email, f.annual.ID)
	}
	f.member(t, "dora@example.com")

	list, err := f.be.Memberships(f.ctx, f.admin, MembershipListOptions{Limit: 2})
	is.NoErr(err)
	is.Equal(len(list.Memberships), 2)
	is.Equal(list.Pagination, Pagination{Page: 1, Limit: 2, Total: 4, Pages: 2})

	list, err = f.be.Memberships(f.ctx, f.admin, MembershipListOptions{Page: 2, Limit: 2})
	is.NoErr(err)
	is.Equal(len(list.Memberships), 2)

	list, err = f.be.Memberships(f.ctx, f.admin, MembershipListOptions{
		MembershipFilter: store.MembershipFilter{Status: "pending"},
	})
	is.NoErr(err)
	is.Equal(list.Pagination.Total, 3)
	is.Equal(list.Pagination.Limit, DefaultPageLimit)

	list, err = f.be.Memberships(f.ctx, f.admin, MembershipListOptions{
		MembershipFilter: store.MembershipFilter{Search: "BOB"},
	})
	is.NoErr(err)
	is.Equal(len(list.Memberships), 1)
	is.Equal(list.Memberships[0].Email, "bob@example.com")

	list, err = f.be.Memberships(f.ctx, f.admin, MembershipListOptions{Limit: 1000})
	is.NoErr(err)
	is.Equal(list.Pagination.Limit, f.be.cfg.Memberships.PageLimit)

	_, err = f.be.Memberships(f.ctx, f.admin, MembershipListOptions{
		MembershipFilter: store.MembershipFilter{Status: "cancelled"},
	})
	assertErr(t, err, proto.ErrValidation)
}
