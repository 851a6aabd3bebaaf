package proto

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error unwraps to exactly one of these.
var (
	// ErrValidation is returned when the input is malformed.
	ErrValidation = errors.New("validation error")
	// ErrUnauthenticated is returned when the request carries no valid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the user is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the current state forbids the action.
	ErrConflict = errors.New("conflict")
)

// Error is a domain error with a user facing message.
type Error struct {
	kind    error
	message string
}

// NewError returns a new error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Error implements error.
func (e *Error) Error() string {
	return e.message
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.kind
}

// Is reports whether target is the same domain error. Two errors are the
// same when they have the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind && t.message == e.message
}

// Validationf returns a new validation error.
func Validationf(format string, args ...interface{}) error {
	return NewError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	// ErrNoToken is returned when the request has no bearer token.
	ErrNoToken = NewError(ErrUnauthenticated, "No token provided")
	// ErrInvalidToken is returned when the bearer token cannot be verified.
	ErrInvalidToken = NewError(ErrUnauthenticated, "Invalid token")
	// ErrTokenExpired is returned when the bearer token is expired.
	ErrTokenExpired = NewError(ErrUnauthenticated, "Token expired")
	// ErrInvalidCredentials is returned when the email or password is wrong.
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "Invalid credentials")

	// ErrInsufficientPermissions is returned when the role lacks a capability.
	ErrInsufficientPermissions = NewError(ErrForbidden, "Insufficient permissions")
	// ErrAccessDenied is returned when a member acts on someone else's record.
	ErrAccessDenied = NewError(ErrForbidden, "Access denied")
	// ErrAccountNotActive is returned when an inactive user logs in.
	ErrAccountNotActive = NewError(ErrForbidden, "Account is not active")

	// ErrNoUpdates is returned when a patch carries no fields.
	ErrNoUpdates = NewError(ErrValidation, "No updates provided")
	// ErrInvalidMembershipType is returned when applying for an unknown type.
	ErrInvalidMembershipType = NewError(ErrValidation, "Invalid membership type")
	// ErrOrganizationRequired is returned when no organization can be resolved.
	ErrOrganizationRequired = NewError(ErrValidation, "Organization is required")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = NewError(ErrNotFound, "User not found")
	// ErrOrganizationNotFound is returned when an organization is not found.
	ErrOrganizationNotFound = NewError(ErrNotFound, "Organization not found")
	// ErrMembershipTypeNotFound is returned when a membership type is not found.
	ErrMembershipTypeNotFound = NewError(ErrNotFound, "Membership type not found")
	// ErrCustomFieldNotFound is returned when a custom field is not found.
	ErrCustomFieldNotFound = NewError(ErrNotFound, "Custom field not found")
	// ErrMembershipNotFound is returned when a membership is not found.
	ErrMembershipNotFound = NewError(ErrNotFound, "Membership not found")
	// ErrNoMembership is returned when the user has no membership at all.
	ErrNoMembership = NewError(ErrNotFound, "No membership found")
	// ErrLinkedMemberNotFound is returned when a linked member is not found.
	ErrLinkedMemberNotFound = NewError(ErrNotFound, "Linked member not found")
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = NewError(ErrNotFound, "Workflow not found")

	// ErrSlugExists is returned when a membership type slug is taken.
	ErrSlugExists = NewError(ErrConflict, "Slug already exists")
	// ErrMembershipTypeInUse is returned when deleting a referenced type.
	ErrMembershipTypeInUse = NewError(ErrConflict, "Cannot delete membership type that is in use. Deactivate it instead.")
	// ErrMembershipNotPending is returned when approving or rejecting a
	// membership that is not pending.
	ErrMembershipNotPending = NewError(ErrConflict, "Membership is not pending")
	// ErrMembershipNotRenewable is returned when renewing a membership
	// without an end date.
	ErrMembershipNotRenewable = NewError(ErrConflict, "Membership has no end date to renew from")
	// ErrInvalidTransition is returned when a status patch is not a valid
	// lifecycle transition and is not forced.
	ErrInvalidTransition = NewError(ErrConflict, "Invalid status transition")
	// ErrPendingTransition is returned when a status patch tries to activate
	// or reject a pending membership without being forced.
	ErrPendingTransition = NewError(ErrConflict, "Pending memberships must be approved or rejected")
	// ErrLinkedMemberLimit is returned when a membership has as many linked
	// members as its type allows.
	ErrLinkedMemberLimit = NewError(ErrConflict, "Linked member limit reached")
	// ErrEmailExists is returned when registering a taken email.
	ErrEmailExists = NewError(ErrConflict, "Email already registered")
	// ErrOrganizationExists is returned when an organization slug is taken.
	ErrOrganizationExists = NewError(ErrConflict, "Organization already exists")
)
