package database

import (
	"context"

	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/store"
)

var _ store.WorkflowStore = (*workflowStore)(nil)

type workflowStore struct{}

// ListWorkflows implements store.WorkflowStore.
func (*workflowStore) ListWorkflows(ctx context.Context, h db.Handler, orgID string) ([]models.Workflow, error) {
	m := []models.Workflow{}
	query := h.Rebind(`SELECT * FROM workflows WHERE organization_id = ? ORDER BY name`)
	err := h.SelectContext(ctx, &m, query, orgID)
	return m, err
}

// GetWorkflowByID implements store.WorkflowStore.
func (*workflowStore) GetWorkflowByID(ctx context.Context, h db.Handler, orgID, id string) (models.Workflow, error) {
	var m models.Workflow
	query := h.Rebind(`SELECT * FROM workflows WHERE id = ? AND organization_id = ?`)
	err := h.GetContext(ctx, &m, query, id, orgID)
	return m, err
}

// FindActiveWorkflowsByTrigger implements store.WorkflowStore.
func (*workflowStore) FindActiveWorkflowsByTrigger(ctx context.Context, h db.Handler, orgID, trigger string) ([]models.Workflow, error) {
	var m []models.Workflow
	query := h.Rebind(`
		SELECT * FROM workflows
		WHERE
		  organization_id = ?
		  AND trigger_type = ?
		  AND is_active = ?
	`)
	err := h.SelectContext(ctx, &m, query, orgID, trigger, true)
	return m, err
}

// CreateWorkflow implements store.WorkflowStore.
func (s *workflowStore) CreateWorkflow(ctx context.Context, h db.Handler, w models.Workflow) (models.Workflow, error) {
	id := newID()
	query := h.Rebind(`
		INSERT INTO workflows (id, organization_id, name, trigger_type, trigger_config, actions, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if _, err := h.ExecContext(ctx, query,
		id, w.OrganizationID, w.Name, w.TriggerType,
		w.TriggerConfig.OrDefault(models.EmptyObject), w.Actions.OrDefault(models.JSON(`[]`)), w.IsActive,
	); err != nil {
		return models.Workflow{}, err
	}

	return s.GetWorkflowByID(ctx, h, w.OrganizationID, id)
}

// UpdateWorkflow implements store.WorkflowStore.
func (*workflowStore) UpdateWorkflow(ctx context.Context, h db.Handler, orgID, id string, patch store.Patch) (int64, error) {
	set, args := setClause(patch)
	query := h.Rebind(`UPDATE workflows SET ` + set + ` WHERE id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, append(args, id, orgID)...)
}

// DeleteWorkflow implements store.WorkflowStore.
func (*workflowStore) DeleteWorkflow(ctx context.Context, h db.Handler, orgID, id string) (int64, error) {
	query := h.Rebind(`DELETE FROM workflows WHERE id = ? AND organization_id = ?`)
	return rowsAffected(ctx, h, query, id, orgID)
}

// CreateWorkflowExecution implements store.WorkflowStore.
func (*workflowStore) CreateWorkflowExecution(ctx context.Context, h db.Handler, e models.WorkflowExecution) (models.WorkflowExecution, error) {
	e.ID = newID()
	if e.Status == "" {
		e.Status = models.WorkflowExecutionPending
	}

	query := h.Rebind(`
		INSERT INTO workflow_executions (id, workflow_id, user_id, status, trigger_data)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := h.ExecContext(ctx, query,
		e.ID, e.WorkflowID, e.UserID, e.Status, e.TriggerData.OrDefault(models.EmptyObject),
	); err != nil {
		return models.WorkflowExecution{}, err
	}

	var m models.WorkflowExecution
	err := h.GetContext(ctx, &m, h.Rebind(`SELECT * FROM workflow_executions WHERE id = ?`), e.ID)
	return m, err
}

// ListWorkflowExecutions implements store.WorkflowStore.
func (*workflowStore) ListWorkflowExecutions(ctx context.Context, h db.Handler, workflowID string) ([]models.WorkflowExecution, error) {
	m := []models.WorkflowExecution{}
	query := h.Rebind(`SELECT * FROM workflow_executions WHERE workflow_id = ? ORDER BY created_at DESC, id`)
	err := h.SelectContext(ctx, &m, query, workflowID)
	return m, err
}

// DeleteWorkflowExecutions implements store.WorkflowStore.
func (*workflowStore) DeleteWorkflowExecutions(ctx context.Context, h db.Handler, workflowID string) error {
	query := h.Rebind(`DELETE FROM workflow_executions WHERE workflow_id = ?`)
	_, err := h.ExecContext(ctx, query, workflowID)
	return err
}
