package access

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in  string
		out Role
	}{
		{"", -1},
		{"foo", -1},
		{"Admin", -1},
		{MemberRole.String(), MemberRole},
		{AdminRole.String(), AdminRole},
		{SuperAdminRole.String(), SuperAdminRole},
	}

	for _, c := range cases {
		out := ParseRole(c.in)
		if out != c.out {
			t.Errorf("ParseRole(%q) => %d, want %d", c.in, out, c.out)
		}
	}
}

func TestRoleJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{SuperAdminRole})
	is.NoErr(err)
	is.Equal(string(b), `{"role":"super_admin"}`)

	var v struct {
		Role Role `json:"role"`
	}
	is.NoErr(json.Unmarshal([]byte(`{"role":"admin"}`), &v))
	is.Equal(v.Role, AdminRole)

	if err := json.Unmarshal([]byte(`{"role":"root"}`), &v); err == nil {
		t.Errorf("Unmarshal(root) => nil, want error")
	}
}

func TestRoleScanValue(t *testing.T) {
	is := is.New(t)

	var r Role
	is.NoErr(r.Scan("super_admin"))
	is.Equal(r, SuperAdminRole)
	is.NoErr(r.Scan([]byte("member")))
	is.Equal(r, MemberRole)
	if err := r.Scan(int64(1)); err == nil {
		t.Errorf("Scan(1) => nil, want error")
	}

	v, err := AdminRole.Value()
	is.NoErr(err)
	is.Equal(v, "admin")
	if _, err := Role(7).Value(); err == nil {
		t.Errorf("Role(7).Value() => nil, want error")
	}
}

func TestCapabilities(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{MemberRole, ReadAnyMembership, false},
		{MemberRole, ApproveMembership, false},
		{MemberRole, ManageMembershipTypes, false},
		{AdminRole, ApproveMembership, true},
		{AdminRole, ForceUpdateMembership, true},
		{AdminRole, ViewAuditLog, true},
		{AdminRole, DeleteMembershipTypes, false},
		{SuperAdminRole, DeleteMembershipTypes, true},
		{SuperAdminRole, ManageWorkflows, true},
		{Role(-1), ListMemberships, false},
	}

	for _, c := range cases {
		if got := c.role.Can(c.cap); got != c.want {
			t.Errorf("%s.Can(%d) => %t, want %t", c.role, c.cap, got, c.want)
		}
	}
}
