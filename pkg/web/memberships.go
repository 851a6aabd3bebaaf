package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// MembershipController registers the membership routes. Every route
// requires authentication.
func MembershipController(_ context.Context, r *mux.Router) {
	s := r.PathPrefix("/memberships").Subrouter()
	s.HandleFunc("", withAuth(getMemberships)).Methods(http.MethodGet)
	s.HandleFunc("/my/current", withAuth(getCurrentMembership)).Methods(http.MethodGet)
	s.HandleFunc("/reports/expiring", withAuth(getExpiringMemberships)).Methods(http.MethodGet)
	s.HandleFunc("/{id}", withAuth(getMembership)).Methods(http.MethodGet)
	s.HandleFunc("/{id}", withAuth(putMembership)).Methods(http.MethodPut)
	s.HandleFunc("/{id}/approve", withAuth(postApproveMembership)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/reject", withAuth(postRejectMembership)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/renew", withAuth(postRenewMembership)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/linked-members", withAuth(postLinkedMember)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/linked-members/{linkedId}", withAuth(deleteLinkedMember)).Methods(http.MethodDelete)
}

func getMemberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	q := r.URL.Query()

	page, err := queryInt(r, "page")
	if err != nil {
		renderError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		renderError(w, r, err)
		return
	}

	list, err := be.Memberships(ctx, proto.UserFromContext(ctx), backend.MembershipListOptions{
		MembershipFilter: store.MembershipFilter{
			Status:           q.Get("status"),
			MembershipTypeID: q.Get("membership_type_id"),
			Search:           q.Get("search"),
		},
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, list)
}

func getCurrentMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	m, err := be.CurrentMembership(ctx, proto.UserFromContext(ctx))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"membership": m})
}

func getExpiringMemberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	days, err := queryOptionalInt(r, "days")
	if err != nil {
		renderError(w, r, err)
		return
	}

	ms, err := be.ExpiringMemberships(ctx, proto.UserFromContext(ctx), days)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"memberships": ms})
}

func getMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	m, err := be.Membership(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"membership": m})
}

func postApproveMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.ApproveOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	m, err := be.ApproveMembership(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":    "Membership approved successfully",
		"membership": m,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func postRejectMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	m, err := be.RejectMembership(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":    "Membership rejected",
		"membership": m,
	})
}

func postRenewMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	renewal, err := be.RenewMembership(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":    "Membership renewal created",
		"renewal_id": renewal.ID,
		"membership": renewal,
	})
}

func putMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var update backend.MembershipUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		renderError(w, r, err)
		return
	}

	m, err := be.UpdateMembership(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], update)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":    "Membership updated successfully",
		"membership": m,
	})
}

func postLinkedMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.LinkedMemberOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	lm, err := be.AddLinkedMember(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusCreated, object{"linked_member": lm})
}

func deleteLinkedMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	vars := mux.Vars(r)

	if err := be.RemoveLinkedMember(ctx, proto.UserFromContext(ctx), vars["id"], vars["linkedId"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"message": "Linked member removed"})
}
