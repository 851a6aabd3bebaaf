package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// transitions are the lifecycle transitions a status patch may perform
// without being forced. Leaving pending is done by approving or rejecting.
var transitions = map[models.MembershipStatus][]models.MembershipStatus{
	models.MembershipStatusActive: {models.MembershipStatusExpired},
}

// CanTransition reports whether a status patch may move a membership from
// one status to another without being forced.
func CanTransition(from, to models.MembershipStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// checkTransition returns the error of an unforced status patch from one
// status to another, if any.
func checkTransition(from, to models.MembershipStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	if from == models.MembershipStatusPending &&
		(to == models.MembershipStatusActive || to == models.MembershipStatusRejected) {
		return proto.ErrPendingTransition
	}
	return proto.ErrInvalidTransition
}

// apply creates a pending, unpaid membership application of the user for
// a membership type of the organization, and enqueues the organization's
// user_registered workflows in the same transaction.
func (d *Backend) apply(ctx context.Context, h db.Handler, orgID, userID, typeID string, customData models.JSON) (models.Membership, error) {
	if !validID(typeID) {
		return models.Membership{}, proto.ErrInvalidMembershipType
	}

	mt, err := d.store.GetMembershipTypeByID(ctx, h, typeID)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return models.Membership{}, proto.ErrInvalidMembershipType
		}
		return models.Membership{}, err
	}
	if mt.OrganizationID != orgID {
		return models.Membership{}, proto.ErrInvalidMembershipType
	}

	m, err := d.store.CreateMembership(ctx, h, models.Membership{
		OrganizationID:   orgID,
		UserID:           userID,
		MembershipTypeID: typeID,
		Status:           models.MembershipStatusPending,
		PaymentStatus:    models.PaymentStatusUnpaid,
		CustomData:       customData,
	})
	if err != nil {
		return models.Membership{}, err
	}

	if _, err := d.EnqueueWorkflows(ctx, h, orgID, models.TriggerUserRegistered, userID, map[string]interface{}{
		"user_id":       userID,
		"membership_id": m.ID,
	}); err != nil {
		return models.Membership{}, err
	}

	membershipTransitionCounter.WithLabelValues("apply").Inc()

	return m, nil
}

// ApproveOptions are the options of an approval. Missing dates default to
// today and to the start date plus the type's duration.
type ApproveOptions struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Notes     *string `json:"notes"`
}

// ApproveMembership activates a pending membership of the user's
// organization, activates its owner and enqueues the organization's
// membership_approved workflows.
func (d *Backend) ApproveMembership(ctx context.Context, user proto.User, id string, opts ApproveOptions) (models.Membership, error) {
	if err := authorize(user, access.ApproveMembership); err != nil {
		return models.Membership{}, err
	}
	if !validID(id) {
		return models.Membership{}, proto.ErrMembershipNotFound
	}

	orgID := user.OrganizationID()
	var m models.Membership
	var start, end string
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if m.Status != models.MembershipStatusPending {
			return proto.ErrMembershipNotPending
		}

		mt, err := d.store.GetMembershipTypeByID(ctx, tx, m.MembershipTypeID)
		if err != nil {
			return err
		}

		startDate, err := parseDateField("start_date", opts.StartDate, d.today())
		if err != nil {
			return err
		}
		endDate, err := parseDateField("end_date", opts.EndDate, AddMonths(startDate, mt.DurationMonths))
		if err != nil {
			return err
		}
		if endDate.Before(startDate) {
			return proto.Validationf("end_date must not be before start_date")
		}
		start, end = FormatDate(startDate), FormatDate(endDate)

		n, err := d.store.ApproveMembership(ctx, tx, id, start, end, user.ID(), d.now(), opts.Notes)
		if err != nil {
			return err
		}
		if n == 0 {
			return proto.ErrMembershipNotPending
		}

		if err := d.store.SetUserStatus(ctx, tx, m.UserID, models.UserStatusActive); err != nil {
			return err
		}

		if _, err := d.EnqueueWorkflows(ctx, tx, orgID, models.TriggerMembershipApproved, m.UserID, map[string]interface{}{
			"membership_id": id,
			"user_id":       m.UserID,
		}); err != nil {
			return err
		}

		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		return err
	}); err != nil {
		return models.Membership{}, d.wrapError(err, proto.ErrMembershipNotFound, "error approving membership", "id", id)
	}

	membershipTransitionCounter.WithLabelValues("approve").Inc()
	d.audit(ctx, user, AuditMembershipApproved, "membership", id, map[string]interface{}{
		"status":     models.MembershipStatusActive,
		"start_date": start,
		"end_date":   end,
	})

	return m, nil
}

// RejectMembership rejects a pending membership of the user's
// organization, recording the reason in its notes.
func (d *Backend) RejectMembership(ctx context.Context, user proto.User, id, reason string) (models.Membership, error) {
	if err := authorize(user, access.RejectMembership); err != nil {
		return models.Membership{}, err
	}
	if !validID(id) {
		return models.Membership{}, proto.ErrMembershipNotFound
	}

	orgID := user.OrganizationID()
	var m models.Membership
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if m.Status != models.MembershipStatusPending {
			return proto.ErrMembershipNotPending
		}

		n, err := d.store.RejectMembership(ctx, tx, id, reason)
		if err != nil {
			return err
		}
		if n == 0 {
			return proto.ErrMembershipNotPending
		}

		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		return err
	}); err != nil {
		return models.Membership{}, d.wrapError(err, proto.ErrMembershipNotFound, "error rejecting membership", "id", id)
	}

	membershipTransitionCounter.WithLabelValues("reject").Inc()
	d.audit(ctx, user, AuditMembershipRejected, "membership", id, map[string]interface{}{
		"status": models.MembershipStatusRejected,
		"reason": reason,
	})

	return m, nil
}

// RenewMembership creates a pending renewal starting the day after the
// membership ends. The renewed membership is left untouched. Members may
// only renew their own memberships.
func (d *Backend) RenewMembership(ctx context.Context, user proto.User, id string) (models.Membership, error) {
	if user == nil {
		return models.Membership{}, proto.ErrNoToken
	}
	if !validID(id) {
		return models.Membership{}, proto.ErrMembershipNotFound
	}

	orgID := user.OrganizationID()
	var renewal models.Membership
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.store.GetMembershipByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if !owns(user, m.UserID, access.RenewAnyMembership) {
			return proto.ErrAccessDenied
		}
		if m.EndDate == nil || *m.EndDate == "" {
			return proto.ErrMembershipNotRenewable
		}

		mt, err := d.store.GetMembershipTypeByID(ctx, tx, m.MembershipTypeID)
		if err != nil {
			return err
		}

		end, err := ParseDate(*m.EndDate)
		if err != nil {
			return proto.ErrMembershipNotRenewable
		}
		start := end.AddDate(0, 0, 1)
		newStart, newEnd := FormatDate(start), FormatDate(AddMonths(start, mt.DurationMonths))

		renewal, err = d.store.CreateMembership(ctx, tx, models.Membership{
			OrganizationID:   m.OrganizationID,
			UserID:           m.UserID,
			MembershipTypeID: m.MembershipTypeID,
			Status:           models.MembershipStatusPending,
			StartDate:        &newStart,
			EndDate:          &newEnd,
			PaymentStatus:    models.PaymentStatusUnpaid,
			AmountPaid:       mt.Price,
			CustomData:       m.CustomData,
		})
		return err
	}); err != nil {
		return models.Membership{}, d.wrapError(err, proto.ErrMembershipNotFound, "error renewing membership", "id", id)
	}

	membershipTransitionCounter.WithLabelValues("renew").Inc()
	d.audit(ctx, user, AuditMembershipRenewed, "membership", renewal.ID, map[string]interface{}{
		"renewed_from": id,
		"start_date":   renewal.StartDate,
		"end_date":     renewal.EndDate,
	})

	return renewal, nil
}

// MembershipUpdate is a partial update of a membership. Nil fields are
// left unchanged. A status change must be a lifecycle transition unless
// Force is set.
type MembershipUpdate struct {
	StartDate     *string                  `json:"start_date,omitempty"`
	EndDate       *string                  `json:"end_date,omitempty"`
	Status        *models.MembershipStatus `json:"status,omitempty"`
	PaymentStatus *string                  `json:"payment_status,omitempty"`
	AmountPaid    *float64                 `json:"amount_paid,omitempty"`
	Notes         *string                  `json:"notes,omitempty"`
	CustomData    *models.JSON             `json:"custom_data,omitempty"`
	Force         bool                     `json:"force,omitempty"`
}

func (u MembershipUpdate) patch() (store.Patch, error) {
	var p store.Patch
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"start_date", u.StartDate},
		{"end_date", u.EndDate},
	} {
		if f.value == nil {
			continue
		}
		if _, err := ParseDate(*f.value); err != nil {
			return nil, proto.Validationf("%s must be a date in YYYY-MM-DD format", f.column)
		}
		p.Set(f.column, *f.value)
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, proto.Validationf("Invalid status %q", *u.Status)
		}
		p.Set("status", *u.Status)
	}
	if u.PaymentStatus != nil {
		if strings.TrimSpace(*u.PaymentStatus) == "" {
			return nil, proto.Validationf("Payment status must not be empty")
		}
		p.Set("payment_status", strings.TrimSpace(*u.PaymentStatus))
	}
	if u.AmountPaid != nil {
		if *u.AmountPaid < 0 {
			return nil, proto.Validationf("Amount paid must be a positive number")
		}
		p.Set("amount_paid", *u.AmountPaid)
	}
	if u.Notes != nil {
		p.Set("notes", *u.Notes)
	}
	if u.CustomData != nil {
		p.Set("custom_data", u.CustomData.OrDefault(models.EmptyObject))
	}
	return p, nil
}

// UpdateMembership partially updates a membership of the user's
// organization. Status changes outside the lifecycle transitions require
// Force and the force update capability.
func (d *Backend) UpdateMembership(ctx context.Context, user proto.User, id string, update MembershipUpdate) (models.Membership, error) {
	if err := authorize(user, access.UpdateMembership); err != nil {
		return models.Membership{}, err
	}
	if update.Force {
		if err := authorize(user, access.ForceUpdateMembership); err != nil {
			return models.Membership{}, err
		}
	}

	patch, err := update.patch()
	if err != nil {
		return models.Membership{}, err
	}
	if patch.Empty() {
		return models.Membership{}, proto.ErrNoUpdates
	}
	if !validID(id) {
		return models.Membership{}, proto.ErrMembershipNotFound
	}

	orgID := user.OrganizationID()
	var m models.Membership
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if update.Status != nil && !update.Force {
			if err := checkTransition(m.Status, *update.Status); err != nil {
				return err
			}
		}

		if _, err := d.store.UpdateMembership(ctx, tx, orgID, id, patch); err != nil {
			return err
		}

		m, err = d.store.GetMembershipByID(ctx, tx, orgID, id)
		return err
	}); err != nil {
		return models.Membership{}, d.wrapError(err, proto.ErrMembershipNotFound, "error updating membership", "id", id)
	}

	action := AuditMembershipUpdated
	if update.Force {
		action = AuditMembershipForceUpdated
	}
	d.audit(ctx, user, action, "membership", id, update)

	return m, nil
}

// ExpireMemberships expires every active membership that ended before
// today. It returns the expired memberships.
func (d *Backend) ExpireMemberships(ctx context.Context) ([]models.Membership, error) {
	today := FormatDate(d.today())
	var expired []models.Membership
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListExpiredMemberships(ctx, tx, today)
		if err != nil {
			return err
		}

		for _, m := range ms {
			n, err := d.store.TransitionMembership(ctx, tx, m.ID, models.MembershipStatusActive, models.MembershipStatusExpired)
			if err != nil {
				return err
			}
			if n > 0 {
				m.Status = models.MembershipStatusExpired
				expired = append(expired, m)
			}
		}

		return nil
	}); err != nil {
		return nil, d.wrapError(err, proto.ErrMembershipNotFound, "error expiring memberships")
	}

	for _, m := range expired {
		membershipTransitionCounter.WithLabelValues("expire").Inc()
		d.LogAudit(ctx, AuditEntry{
			OrganizationID: m.OrganizationID,
			Action:         AuditMembershipExpired,
			EntityType:     "membership",
			EntityID:       m.ID,
			Changes: map[string]interface{}{
				"status":   models.MembershipStatusExpired,
				"end_date": m.EndDate,
			},
		})
	}

	return expired, nil
}

// ExpiringMemberships returns the active memberships of the user's
// organization that end within the given number of days, soonest first.
// A nil days uses the configured default window.
func (d *Backend) ExpiringMemberships(ctx context.Context, user proto.User, days *int) ([]models.MembershipDetail, error) {
	if err := authorize(user, access.ViewReports); err != nil {
		return nil, err
	}

	return d.ExpiringMembershipsForOrganization(ctx, user.OrganizationID(), days)
}

// ExpiringMembershipsForOrganization returns the active memberships of the
// organization that end within the given number of days, soonest first.
// Zero days is today only. A nil days uses the configured default window.
func (d *Backend) ExpiringMembershipsForOrganization(ctx context.Context, orgID string, days *int) ([]models.MembershipDetail, error) {
	window := d.cfg.Memberships.ExpiringDays
	if days != nil {
		window = *days
	}
	if window < 0 {
		return nil, proto.Validationf("days must not be negative")
	}

	today := d.today()
	from, to := FormatDate(today), FormatDate(today.AddDate(0, 0, window))
	ms, err := d.store.ListExpiringMemberships(ctx, d.db, orgID, from, to)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrMembershipNotFound, "error listing expiring memberships", "org", orgID)
	}

	return ms, nil
}

// MembershipListOptions filter and paginate a membership listing.
type MembershipListOptions struct {
	store.MembershipFilter
	Page  int
	Limit int
}

// MembershipList is a page of memberships.
type MembershipList struct {
	Memberships []models.MembershipDetail `json:"memberships"`
	Pagination  Pagination                `json:"pagination"`
}

// Memberships returns a page of the memberships of the user's
// organization, newest first.
func (d *Backend) Memberships(ctx context.Context, user proto.User, opts MembershipListOptions) (MembershipList, error) {
	if err := authorize(user, access.ListMemberships); err != nil {
		return MembershipList{}, err
	}
	if opts.Status != "" && !models.MembershipStatus(opts.Status).Valid() {
		return MembershipList{}, proto.Validationf("Invalid status %q", opts.Status)
	}
	opts.Search = strings.TrimSpace(opts.Search)

	page, limit, p := d.page(opts.Page, opts.Limit)
	orgID := user.OrganizationID()
	ms, err := d.store.ListMemberships(ctx, d.db, orgID, opts.MembershipFilter, p)
	if err != nil {
		return MembershipList{}, d.wrapError(err, proto.ErrMembershipNotFound, "error listing memberships", "org", orgID)
	}

	total, err := d.store.CountMemberships(ctx, d.db, orgID, opts.MembershipFilter)
	if err != nil {
		return MembershipList{}, d.wrapError(err, proto.ErrMembershipNotFound, "error counting memberships", "org", orgID)
	}

	return MembershipList{Memberships: ms, Pagination: newPagination(page, limit, total)}, nil
}

// Membership returns a membership of the user's organization with its
// linked members. Members may only read their own memberships.
func (d *Backend) Membership(ctx context.Context, user proto.User, id string) (models.MembershipDetail, error) {
	if user == nil {
		return models.MembershipDetail{}, proto.ErrNoToken
	}
	if !validID(id) {
		return models.MembershipDetail{}, proto.ErrMembershipNotFound
	}

	m, err := d.store.GetMembershipDetailByID(ctx, d.db, user.OrganizationID(), id)
	if err != nil {
		return models.MembershipDetail{}, d.wrapError(err, proto.ErrMembershipNotFound, "error finding membership", "id", id)
	}
	if !owns(user, m.UserID, access.ReadAnyMembership) {
		return models.MembershipDetail{}, proto.ErrAccessDenied
	}

	return d.withLinkedMembers(ctx, m)
}

// CurrentMembership returns the user's most recent membership with its
// linked members.
func (d *Backend) CurrentMembership(ctx context.Context, user proto.User) (models.MembershipDetail, error) {
	if user == nil {
		return models.MembershipDetail{}, proto.ErrNoToken
	}

	m, err := d.store.FindLatestMembershipByUser(ctx, d.db, user.ID())
	if err != nil {
		return models.MembershipDetail{}, d.wrapError(err, proto.ErrNoMembership, "error finding current membership", "user", user.ID())
	}

	return d.withLinkedMembers(ctx, m)
}

func (d *Backend) withLinkedMembers(ctx context.Context, m models.MembershipDetail) (models.MembershipDetail, error) {
	lms, err := d.store.ListLinkedMembers(ctx, d.db, m.ID)
	if err != nil {
		return models.MembershipDetail{}, d.wrapError(err, proto.ErrMembershipNotFound, "error listing linked members", "membership", m.ID)
	}
	m.LinkedMembers = lms

	return m, nil
}
