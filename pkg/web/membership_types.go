package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/proto"
)

// MembershipTypeController registers the membership type routes.
func MembershipTypeController(_ context.Context, r *mux.Router) {
	s := r.PathPrefix("/membership-types").Subrouter()
	s.HandleFunc("", withOptionalAuth(getMembershipTypes)).Methods(http.MethodGet)
	s.HandleFunc("", withAuth(postMembershipType)).Methods(http.MethodPost)
	s.HandleFunc("/{id}", getMembershipType).Methods(http.MethodGet)
	s.HandleFunc("/{id}", withAuth(putMembershipType)).Methods(http.MethodPut)
	s.HandleFunc("/{id}", withAuth(deleteMembershipType)).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/custom-fields", withAuth(postCustomField)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/custom-fields/{fieldId}", withAuth(deleteCustomField)).Methods(http.MethodDelete)
}

// getMembershipTypes lists the types of the caller's organization. Anonymous
// callers name an organization with the organization_id query parameter or
// get the default organization.
func getMembershipTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var orgID string
	if user := proto.UserFromContext(ctx); user != nil {
		orgID = user.OrganizationID()
	} else {
		org, err := be.ResolveOrganization(ctx, r.URL.Query().Get("organization_id"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		orgID = org.ID
	}

	types, err := be.MembershipTypes(ctx, orgID, queryBool(r, "is_active"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"membership_types": types})
}

func getMembershipType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	mt, err := be.MembershipType(ctx, mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"membership_type": mt})
}

func postMembershipType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.MembershipTypeOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	mt, err := be.CreateMembershipType(ctx, proto.UserFromContext(ctx), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusCreated, object{"membership_type": mt})
}

func putMembershipType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var update backend.MembershipTypeUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		renderError(w, r, err)
		return
	}

	mt, err := be.UpdateMembershipType(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], update)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":         "Membership type updated successfully",
		"membership_type": mt,
	})
}

func deleteMembershipType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	if err := be.DeleteMembershipType(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"message": "Membership type deleted successfully"})
}

func postCustomField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.CustomFieldOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	cf, err := be.AddCustomField(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusCreated, object{"custom_field": cf})
}

func deleteCustomField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	vars := mux.Vars(r)

	if err := be.DeleteCustomField(ctx, proto.UserFromContext(ctx), vars["id"], vars["fieldId"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"message": "Custom field deleted successfully"})
}
