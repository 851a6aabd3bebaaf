package backend

import (
	"testing"

	"github.com/matryer/is"
	"github.com/softmembers/soft-members/pkg/proto"
)

func TestLinkedMembers(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")
	other, _ := f.member(t, "other@example.com")

	lm, err := f.be.AddLinkedMember(f.ctx, member, m.ID, LinkedMemberOptions{
		FirstName:    "Leo",
		LastName:     "Member",
		DateOfBirth:  ptr("2015-04-02"),
		Relationship: ptr("child"),
	})
	is.NoErr(err)
	is.Equal(lm.MembershipID, m.ID)
	is.Equal(*lm.Relationship, "child")

	_, err = f.be.AddLinkedMember(f.ctx, f.admin, m.ID, LinkedMemberOptions{FirstName: "Ana", LastName: "Member"})
	is.NoErr(err)

	got, err := f.be.Membership(f.ctx, member, m.ID)
	is.NoErr(err)
	is.Equal(len(got.LinkedMembers), 2)

	_, err = f.be.AddLinkedMember(f.ctx, other, m.ID, LinkedMemberOptions{FirstName: "Eve", LastName: "Other"})
	assertErr(t, err, proto.ErrAccessDenied)

	err = f.be.RemoveLinkedMember(f.ctx, other, m.ID, lm.ID)
	assertErr(t, err, proto.ErrAccessDenied)

	_, err = f.be.AddLinkedMember(f.ctx, member, m.ID, LinkedMemberOptions{FirstName: "", LastName: "Member"})
	assertErr(t, err, proto.ErrValidation)

	_, err = f.be.AddLinkedMember(f.ctx, member, m.ID, LinkedMemberOptions{FirstName: "Kid", LastName: "Member", DateOfBirth: ptr("April")})
	assertErr(t, err, proto.ErrValidation)

	_, err = f.be.AddLinkedMember(f.ctx, member, "3e4d5c6b-7a89-4b0c-9d1e-2f3a4b5c6d7e", LinkedMemberOptions{FirstName: "Kid", LastName: "Member"})
	assertErr(t, err, proto.ErrMembershipNotFound)

	is.NoErr(f.be.RemoveLinkedMember(f.ctx, member, m.ID, lm.ID))
	is.NoErr(f.be.RemoveLinkedMember(f.ctx, member, m.ID, lm.ID))

	got, err = f.be.Membership(f.ctx, member, m.ID)
	is.NoErr(err)
	is.Equal(len(got.LinkedMembers), 1)

	is.Equal(len(f.auditActions(t, AuditLinkedMemberAdded)), 2)
	is.Equal(len(f.auditActions(t, AuditLinkedMemberRemoved)), 1)
}

func TestLinkedMemberLimit(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	member, m := f.member(t, "mia@example.com")

	// The annual type allows a single member. The cap is off by default.
	for i := 0; i < 2; i++ {
		_, err := f.be.AddLinkedMember(f.ctx, member, m.ID, LinkedMemberOptions{FirstName: "Kid", LastName: "Member"})
		is.NoErr(err)
	}

	f.be.cfg.Memberships.EnforceMaxMembers = true
	_, err := f.be.AddLinkedMember(f.ctx, member, m.ID, LinkedMemberOptions{FirstName: "Kid", LastName: "Member"})
	assertErr(t, err, proto.ErrLinkedMemberLimit)

	family, err := f.be.CreateMembershipType(f.ctx, f.admin, MembershipTypeOptions{
		Name:           "Family",
		Slug:           "family",
		Price:          ptr(150.0),
		DurationMonths: ptr(12),
		MaxMembers:     ptr(2),
	})
	is.NoErr(err)

	fu, fm := f.register(t, "family@example.com", family.ID)
	_, err = f.be.AddLinkedMember(f.ctx, fu, fm.ID, LinkedMemberOptions{FirstName: "One", LastName: "Family"})
	is.NoErr(err)
	_, err = f.be.AddLinkedMember(f.ctx, fu, fm.ID, LinkedMemberOptions{FirstName: "Two", LastName: "Family"})
	is.NoErr(err)
	_, err = f.be.AddLinkedMember(f.ctx, fu, fm.ID, LinkedMemberOptions{FirstName: "Three", LastName: "Family"})
	assertErr(t, err, proto.ErrLinkedMemberLimit)
}
