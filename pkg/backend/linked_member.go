package backend

import (
	"context"
	"strings"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/utils"
)

// LinkedMemberOptions are the fields of a new linked member.
type LinkedMemberOptions struct {
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	DateOfBirth  *string     `json:"date_of_birth"`
	Relationship *string     `json:"relationship"`
	Email        *string     `json:"email"`
	CustomData   models.JSON `json:"custom_data"`
}

func (o *LinkedMemberOptions) validate() error {
	o.FirstName = strings.TrimSpace(o.FirstName)
	o.LastName = strings.TrimSpace(o.LastName)
	if o.FirstName == "" {
		return proto.Validationf("First name is required")
	}
	if o.LastName == "" {
		return proto.Validationf("Last name is required")
	}
	if o.DateOfBirth != nil && *o.DateOfBirth != "" {
		if _, err := ParseDate(*o.DateOfBirth); err != nil {
			return proto.Validationf("date_of_birth must be a date in YYYY-MM-DD format")
		}
	}
	if o.Email != nil && *o.Email != "" {
		email := strings.ToLower(strings.TrimSpace(*o.Email))
		if err := utils.ValidateEmail(email); err != nil {
			return proto.Validationf("%s", err)
		}
		o.Email = &email
	}
	return nil
}

// linkedMembership returns the membership the user may manage linked
// members of.
func (d *Backend) linkedMembership(ctx context.Context, h db.Handler, user proto.User, id string) (models.Membership, error) {
	if !validID(id) {
		return models.Membership{}, proto.ErrMembershipNotFound
	}

	m, err := d.store.GetMembershipByID(ctx, h, user.OrganizationID(), id)
	if err != nil {
		return models.Membership{}, err
	}
	if !owns(user, m.UserID, access.ManageAnyLinkedMembers) {
		return models.Membership{}, proto.ErrAccessDenied
	}

	return m, nil
}

// AddLinkedMember attaches a dependent to a membership. The linked member
// limit of the membership type is enforced only when configured.
func (d *Backend) AddLinkedMember(ctx context.Context, user proto.User, membershipID string, opts LinkedMemberOptions) (models.LinkedMember, error) {
	if user == nil {
		return models.LinkedMember{}, proto.ErrNoToken
	}

	var lm models.LinkedMember
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.linkedMembership(ctx, tx, user, membershipID)
		if err != nil {
			return err
		}
		if err := opts.validate(); err != nil {
			return err
		}

		if d.cfg.Memberships.EnforceMaxMembers {
			mt, err := d.store.GetMembershipTypeByID(ctx, tx, m.MembershipTypeID)
			if err != nil {
				return err
			}
			count, err := d.store.CountLinkedMembers(ctx, tx, m.ID)
			if err != nil {
				return err
			}
			if count >= mt.MaxMembers {
				return proto.ErrLinkedMemberLimit
			}
		}

		lm, err = d.store.CreateLinkedMember(ctx, tx, models.LinkedMember{
			MembershipID: m.ID,
			FirstName:    opts.FirstName,
			LastName:     opts.LastName,
			DateOfBirth:  opts.DateOfBirth,
			Relationship: opts.Relationship,
			Email:        opts.Email,
			CustomData:   opts.CustomData,
		})
		return err
	}); err != nil {
		return models.LinkedMember{}, d.wrapError(err, proto.ErrMembershipNotFound, "error adding linked member", "membership", membershipID)
	}

	d.audit(ctx, user, AuditLinkedMemberAdded, "linked_member", lm.ID, map[string]interface{}{
		"membership_id": membershipID,
		"first_name":    lm.FirstName,
		"last_name":     lm.LastName,
	})

	return lm, nil
}

// RemoveLinkedMember detaches a dependent from a membership. Removing a
// missing linked member is not an error.
func (d *Backend) RemoveLinkedMember(ctx context.Context, user proto.User, membershipID, linkedID string) error {
	if user == nil {
		return proto.ErrNoToken
	}

	m, err := d.linkedMembership(ctx, d.db, user, membershipID)
	if err != nil {
		return d.wrapError(err, proto.ErrMembershipNotFound, "error finding membership", "id", membershipID)
	}
	if !validID(linkedID) {
		return nil
	}

	n, err := d.store.DeleteLinkedMember(ctx, d.db, m.ID, linkedID)
	if err != nil {
		return d.wrapError(err, proto.ErrLinkedMemberNotFound, "error removing linked member", "id", linkedID)
	}
	if n > 0 {
		d.audit(ctx, user, AuditLinkedMemberRemoved, "linked_member", linkedID, map[string]interface{}{
			"membership_id": membershipID,
		})
	}

	return nil
}
