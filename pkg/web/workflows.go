package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/proto"
)

// WorkflowController registers the workflow definition routes.
func WorkflowController(_ context.Context, r *mux.Router) {
	s := r.PathPrefix("/workflows").Subrouter()
	s.HandleFunc("", withAuth(getWorkflows)).Methods(http.MethodGet)
	s.HandleFunc("", withAuth(postWorkflow)).Methods(http.MethodPost)
	s.HandleFunc("/{id}", withAuth(getWorkflow)).Methods(http.MethodGet)
	s.HandleFunc("/{id}", withAuth(putWorkflow)).Methods(http.MethodPut)
	s.HandleFunc("/{id}", withAuth(deleteWorkflow)).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/executions", withAuth(getWorkflowExecutions)).Methods(http.MethodGet)
}

func getWorkflows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	ws, err := be.Workflows(ctx, proto.UserFromContext(ctx))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"workflows": ws})
}

func getWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	wf, err := be.Workflow(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"workflow": wf})
}

func postWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.WorkflowOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	wf, err := be.CreateWorkflow(ctx, proto.UserFromContext(ctx), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusCreated, object{"workflow": wf})
}

func putWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var update backend.WorkflowUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		renderError(w, r, err)
		return
	}

	wf, err := be.UpdateWorkflow(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"], update)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"message":  "Workflow updated successfully",
		"workflow": wf,
	})
}

func deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	if err := be.DeleteWorkflow(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"message": "Workflow deleted successfully"})
}

func getWorkflowExecutions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	es, err := be.WorkflowExecutions(ctx, proto.UserFromContext(ctx), mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{"executions": es})
}
