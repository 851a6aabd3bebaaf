package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// AuditLogController registers the audit log routes.
func AuditLogController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/audit-log", withAuth(getAuditLog)).Methods(http.MethodGet)
}

func getAuditLog(w http.ResponseWriter, r *http.Request) {
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

	l, err := be.AuditLog(ctx, proto.UserFromContext(ctx), backend.AuditLogOptions{
		AuditFilter: store.AuditFilter{
			Action:     q.Get("action"),
			EntityType: q.Get("entity_type"),
			UserID:     q.Get("user_id"),
		},
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"audit_log":  l.Entries,
		"pagination": l.Pagination,
	})
}
