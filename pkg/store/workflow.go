package store

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// WorkflowStore is a store for workflow definitions and their queued
// executions.
type WorkflowStore interface {
	ListWorkflows(ctx context.Context, h db.Handler, orgID string) ([]models.Workflow, error)
	GetWorkflowByID(ctx context.Context, h db.Handler, orgID, id string) (models.Workflow, error)
	FindActiveWorkflowsByTrigger(ctx context.Context, h db.Handler, orgID, trigger string) ([]models.Workflow, error)
	CreateWorkflow(ctx context.Context, h db.Handler, w models.Workflow) (models.Workflow, error)
	UpdateWorkflow(ctx context.Context, h db.Handler, orgID, id string, patch Patch) (int64, error)
	DeleteWorkflow(ctx context.Context, h db.Handler, orgID, id string) (int64, error)

	CreateWorkflowExecution(ctx context.Context, h db.Handler, e models.WorkflowExecution) (models.WorkflowExecution, error)
	ListWorkflowExecutions(ctx context.Context, h db.Handler, workflowID string) ([]models.WorkflowExecution, error)
	DeleteWorkflowExecutions(ctx context.Context, h db.Handler, workflowID string) error
}
