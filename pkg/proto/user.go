// Package proto defines the domain interfaces and errors shared across
// Soft Members packages.
package proto

import "github.com/softmembers/soft-members/pkg/access"

// User is an interface representing an authenticated user.
type User interface {
	// ID returns the user's ID.
	ID() string
	// OrganizationID returns the ID of the user's organization.
	OrganizationID() string
	// Email returns the user's email address.
	Email() string
	// FirstName returns the user's first name.
	FirstName() string
	// LastName returns the user's last name.
	LastName() string
	// Role returns the user's role.
	Role() access.Role
	// IsActive returns whether the user's account is active.
	IsActive() bool
}
