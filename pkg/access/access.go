// Package access defines user roles and the capabilities they grant.
package access

import (
	"database/sql/driver"
	"encoding"
	"errors"
	"fmt"
)

// Role is the role of a user within an organization.
type Role int

const (
	// MemberRole can manage their own memberships.
	MemberRole Role = iota

	// AdminRole can manage the organization's memberships, types and
	// workflows.
	AdminRole

	// SuperAdminRole can do everything an admin can, and delete
	// membership types.
	SuperAdminRole
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case MemberRole:
		return "member"
	case AdminRole:
		return "admin"
	case SuperAdminRole:
		return "super_admin"
	default:
		return "unknown"
	}
}

// ParseRole parses a role string.
func ParseRole(s string) Role {
	switch s {
	case "member":
		return MemberRole
	case "admin":
		return AdminRole
	case "super_admin":
		return SuperAdminRole
	default:
		return Role(-1)
	}
}

var (
	_ encoding.TextMarshaler   = Role(0)
	_ encoding.TextUnmarshaler = (*Role)(nil)
	_ driver.Valuer            = Role(0)
)

// ErrInvalidRole is returned when an invalid role is provided.
var ErrInvalidRole = errors.New("invalid role")

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	l := ParseRole(string(text))
	if l < 0 {
		return ErrInvalidRole
	}

	*r = l

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

// Value implements driver.Valuer. Roles are stored by name.
func (r Role) Value() (driver.Value, error) {
	if r < MemberRole || r > SuperAdminRole {
		return nil, ErrInvalidRole
	}
	return r.String(), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}
