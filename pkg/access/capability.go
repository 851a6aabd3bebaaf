package access

// Capability is an action a role may be permitted to perform.
type Capability int

// Capabilities.
const (
	ListMemberships Capability = iota
	ReadAnyMembership
	ApproveMembership
	RejectMembership
	RenewAnyMembership
	UpdateMembership
	ForceUpdateMembership
	ManageAnyLinkedMembers
	ViewReports
	ManageMembershipTypes
	DeleteMembershipTypes
	ManageWorkflows
	ViewAuditLog
)

var adminCapabilities = []Capability{
	ListMemberships,
	ReadAnyMembership,
	ApproveMembership,
	RejectMembership,
	RenewAnyMembership,
	UpdateMembership,
	ForceUpdateMembership,
	ManageAnyLinkedMembers,
	ViewReports,
	ManageMembershipTypes,
	ManageWorkflows,
	ViewAuditLog,
}

var capabilities = map[Role]map[Capability]struct{}{
	MemberRole:     set(),
	AdminRole:      set(adminCapabilities...),
	SuperAdminRole: set(append(adminCapabilities, DeleteMembershipTypes)...),
}

func set(cs ...Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(cs))
	for _, c := range cs {
		m[c] = struct{}{}
	}
	return m
}

// Can reports whether role r grants capability c. Unknown roles grant
// nothing.
func Can(r Role, c Capability) bool {
	_, ok := capabilities[r][c]
	return ok
}

// Can reports whether r grants capability c.
func (r Role) Can(c Capability) bool {
	return Can(r, c)
}
