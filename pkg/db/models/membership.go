package models

import "time"

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

// Membership statuses.
const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusRejected MembershipStatus = "rejected"
	MembershipStatusExpired  MembershipStatus = "expired"
)

// Valid reports whether s is a known membership status.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipStatusPending, MembershipStatusActive,
		MembershipStatusRejected, MembershipStatusExpired:
		return true
	}
	return false
}

// PaymentStatusUnpaid is the payment status of new memberships.
const PaymentStatusUnpaid = "unpaid"

// Membership is a user's enrolment in a membership type.
type Membership struct {
	ID               string           `db:"id" json:"id"`
	OrganizationID   string           `db:"organization_id" json:"organization_id"`
	UserID           string           `db:"user_id" json:"user_id"`
	MembershipTypeID string           `db:"membership_type_id" json:"membership_type_id"`
	Status           MembershipStatus `db:"status" json:"status"`
	StartDate        *string          `db:"start_date" json:"start_date"`
	EndDate          *string          `db:"end_date" json:"end_date"`
	PaymentStatus    string           `db:"payment_status" json:"payment_status"`
	AmountPaid       float64          `db:"amount_paid" json:"amount_paid"`
	Notes            *string          `db:"notes" json:"notes"`
	CustomData       JSON             `db:"custom_data" json:"custom_data"`
	ApprovedBy       *string          `db:"approved_by" json:"approved_by"`
	ApprovedAt       *time.Time       `db:"approved_at" json:"approved_at"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`

	// Seq orders memberships by insertion.
	Seq int64 `db:"seq" json:"-"`
}

// MembershipDetail is a membership joined with its owner, type and
// approver.
type MembershipDetail struct {
	Membership

	Email              string  `db:"email" json:"email"`
	FirstName          string  `db:"first_name" json:"first_name"`
	LastName           string  `db:"last_name" json:"last_name"`
	Phone              *string `db:"phone" json:"phone"`
	MembershipTypeName string  `db:"membership_type_name" json:"membership_type_name"`
	DurationMonths     int     `db:"duration_months" json:"duration_months"`
	ApproverFirstName  *string `db:"approver_first_name" json:"approver_first_name"`
	ApproverLastName   *string `db:"approver_last_name" json:"approver_last_name"`

	LinkedMembers []LinkedMember `db:"-" json:"linked_members"`
}

// LinkedMember is a dependent attached to a membership.
type LinkedMember struct {
	ID           string    `db:"id" json:"id"`
	MembershipID string    `db:"membership_id" json:"membership_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	DateOfBirth  *string   `db:"date_of_birth" json:"date_of_birth"`
	Relationship *string   `db:"relationship" json:"relationship"`
	Email        *string   `db:"email" json:"email"`
	CustomData   JSON      `db:"custom_data" json:"custom_data"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
