// Package store defines the persistence interfaces of Soft Members.
package store

import "context"

// Store is an interface for managing organizations, users, memberships,
// workflows and the audit log.
type Store interface {
	OrganizationStore
	UserStore
	MembershipTypeStore
	MembershipStore
	LinkedMemberStore
	WorkflowStore
	AuditStore
}

// ContextKey is the store context key.
var ContextKey = &struct{ string }{"store"}

// FromContext returns the store from the context.
func FromContext(ctx context.Context) Store {
	if s, ok := ctx.Value(ContextKey).(Store); ok {
		return s
	}

	return nil
}

// WithContext returns a new context with the store.
func WithContext(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, ContextKey, s)
}

// Assignment is a single column assignment of a partial update.
type Assignment struct {
	Column string
	Value  interface{}
}

// Patch is an ordered list of column assignments. Columns are trusted
// identifiers, never user input.
type Patch []Assignment

// Set appends an assignment to the patch.
func (p *Patch) Set(column string, value interface{}) {
	*p = append(*p, Assignment{Column: column, Value: value})
}

// Empty reports whether the patch has no assignments.
func (p Patch) Empty() bool {
	return len(p) == 0
}

// Page is an offset based page of a listing.
type Page struct {
	Limit  int
	Offset int
}
