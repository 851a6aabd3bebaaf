package proto

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matryer/is"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrMembershipNotFound, ErrNotFound},
		{ErrMembershipNotPending, ErrConflict},
		{ErrAccessDenied, ErrForbidden},
		{ErrNoToken, ErrUnauthenticated},
		{ErrNoUpdates, ErrValidation},
		{fmt.Errorf("approve: %w", ErrSlugExists), ErrConflict},
		{Validationf("%s is required", "name"), ErrValidation},
	}

	for _, c := range cases {
		if !errors.Is(c.err, c.kind) {
			t.Errorf("errors.Is(%v, %v) => false, want true", c.err, c.kind)
		}
	}
}

func TestErrorIdentity(t *testing.T) {
	is := is.New(t)
	is.True(errors.Is(fmt.Errorf("wrap: %w", ErrMembershipNotFound), ErrMembershipNotFound))
	is.True(!errors.Is(ErrMembershipNotFound, ErrUserNotFound))
	is.True(errors.Is(Validationf("%s is required", "name"), Validationf("name is required")))
	is.Equal(ErrMembershipTypeInUse.Error(), "Cannot delete membership type that is in use. Deactivate it instead.")
	is.Equal(Validationf("price must be at least %d", 0).Error(), "price must be at least 0")
}

func TestUserFromContext(t *testing.T) {
	ctx := WithRequestInfoContext(context.TODO(), RequestInfo{IPAddress: "127.0.0.1"})
	if u := UserFromContext(ctx); u != nil {
		t.Errorf("UserFromContext(ctx) => %v, want nil", u)
	}
	if ri := RequestInfoFromContext(ctx); ri.IPAddress != "127.0.0.1" {
		t.Errorf("RequestInfoFromContext(ctx) => %v, want 127.0.0.1", ri)
	}
}
