package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/db"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/softmembers/soft-members/pkg/store"
)

// EnqueueWorkflows creates a pending execution for every active workflow of
// the organization listening on the trigger. It runs on the caller's
// handler so executions commit or roll back with the caller's transaction.
// It returns the number of executions created.
func (d *Backend) EnqueueWorkflows(ctx context.Context, h db.Handler, orgID, trigger, userID string, data interface{}) (int, error) {
	workflows, err := d.store.FindActiveWorkflowsByTrigger(ctx, h, orgID, trigger)
	if err != nil {
		return 0, fmt.Errorf("failed to find workflows for %s: %w", trigger, err)
	}
	if len(workflows) == 0 {
		return 0, nil
	}

	triggerData, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	for _, w := range workflows {
		if _, err := d.store.CreateWorkflowExecution(ctx, h, models.WorkflowExecution{
			WorkflowID:  w.ID,
			UserID:      nullString(userID),
			Status:      models.WorkflowExecutionPending,
			TriggerData: triggerData,
		}); err != nil {
			return 0, fmt.Errorf("failed to enqueue workflow %s: %w", w.ID, err)
		}
	}

	workflowExecutionCounter.WithLabelValues(trigger).Add(float64(len(workflows)))
	d.logger.Debug("enqueued workflows", "trigger", trigger, "org", orgID, "count", len(workflows))

	return len(workflows), nil
}

// WorkflowOptions are the fields of a new workflow.
type WorkflowOptions struct {
	Name          string      `json:"name"`
	TriggerType   string      `json:"trigger_type"`
	TriggerConfig models.JSON `json:"trigger_config"`
	Actions       models.JSON `json:"actions"`
	IsActive      *bool       `json:"is_active"`
}

// WorkflowUpdate is a partial update of a workflow. Nil fields are left
// unchanged.
type WorkflowUpdate struct {
	Name          *string      `json:"name,omitempty"`
	TriggerType   *string      `json:"trigger_type,omitempty"`
	TriggerConfig *models.JSON `json:"trigger_config,omitempty"`
	Actions       *models.JSON `json:"actions,omitempty"`
	IsActive      *bool        `json:"is_active,omitempty"`
}

func (u WorkflowUpdate) patch() (store.Patch, error) {
	var p store.Patch
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return nil, proto.Validationf("Name is required")
		}
		p.Set("name", strings.TrimSpace(*u.Name))
	}
	if u.TriggerType != nil {
		if strings.TrimSpace(*u.TriggerType) == "" {
			return nil, proto.Validationf("Trigger type is required")
		}
		p.Set("trigger_type", strings.TrimSpace(*u.TriggerType))
	}
	if u.TriggerConfig != nil {
		p.Set("trigger_config", u.TriggerConfig.OrDefault(models.EmptyObject))
	}
	if u.Actions != nil {
		p.Set("actions", u.Actions.OrDefault(models.JSON(`[]`)))
	}
	if u.IsActive != nil {
		p.Set("is_active", *u.IsActive)
	}
	return p, nil
}

// Workflows returns the workflows of the user's organization.
func (d *Backend) Workflows(ctx context.Context, user proto.User) ([]models.Workflow, error) {
	if err := authorize(user, access.ManageWorkflows); err != nil {
		return nil, err
	}

	ws, err := d.store.ListWorkflows(ctx, d.db, user.OrganizationID())
	if err != nil {
		return nil, d.wrapError(err, proto.ErrWorkflowNotFound, "error listing workflows")
	}

	return ws, nil
}

// Workflow returns a workflow of the user's organization.
func (d *Backend) Workflow(ctx context.Context, user proto.User, id string) (models.Workflow, error) {
	if err := authorize(user, access.ManageWorkflows); err != nil {
		return models.Workflow{}, err
	}
	if !validID(id) {
		return models.Workflow{}, proto.ErrWorkflowNotFound
	}

	w, err := d.store.GetWorkflowByID(ctx, d.db, user.OrganizationID(), id)
	if err != nil {
		return models.Workflow{}, d.wrapError(err, proto.ErrWorkflowNotFound, "error finding workflow", "id", id)
	}

	return w, nil
}

// CreateWorkflow creates a workflow in the user's organization.
func (d *Backend) CreateWorkflow(ctx context.Context, user proto.User, opts WorkflowOptions) (models.Workflow, error) {
	if err := authorize(user, access.ManageWorkflows); err != nil {
		return models.Workflow{}, err
	}

	name := strings.TrimSpace(opts.Name)
	trigger := strings.TrimSpace(opts.TriggerType)
	if name == "" {
		return models.Workflow{}, proto.Validationf("Name is required")
	}
	if trigger == "" {
		return models.Workflow{}, proto.Validationf("Trigger type is required")
	}

	active := true
	if opts.IsActive != nil {
		active = *opts.IsActive
	}

	w, err := d.store.CreateWorkflow(ctx, d.db, models.Workflow{
		OrganizationID: user.OrganizationID(),
		Name:           name,
		TriggerType:    trigger,
		TriggerConfig:  opts.TriggerConfig.OrDefault(models.EmptyObject),
		Actions:        opts.Actions.OrDefault(models.JSON(`[]`)),
		IsActive:       active,
	})
	if err != nil {
		return models.Workflow{}, d.wrapError(err, proto.ErrWorkflowNotFound, "error creating workflow", "name", name)
	}

	d.audit(ctx, user, AuditWorkflowCreated, "workflow", w.ID, map[string]interface{}{
		"name":         w.Name,
		"trigger_type": w.TriggerType,
	})

	return w, nil
}

// UpdateWorkflow partially updates a workflow of the user's organization.
func (d *Backend) UpdateWorkflow(ctx context.Context, user proto.User, id string, update WorkflowUpdate) (models.Workflow, error) {
	if err := authorize(user, access.ManageWorkflows); err != nil {
		return models.Workflow{}, err
	}

	patch, err := update.patch()
	if err != nil {
		return models.Workflow{}, err
	}
	if patch.Empty() {
		return models.Workflow{}, proto.ErrNoUpdates
	}
	if !validID(id) {
		return models.Workflow{}, proto.ErrWorkflowNotFound
	}

	orgID := user.OrganizationID()
	n, err := d.store.UpdateWorkflow(ctx, d.db, orgID, id, patch)
	if err != nil {
		return models.Workflow{}, d.wrapError(err, proto.ErrWorkflowNotFound, "error updating workflow", "id", id)
	}
	if n == 0 {
		return models.Workflow{}, proto.ErrWorkflowNotFound
	}

	w, err := d.store.GetWorkflowByID(ctx, d.db, orgID, id)
	if err != nil {
		return models.Workflow{}, d.wrapError(err, proto.ErrWorkflowNotFound, "error finding workflow", "id", id)
	}

	d.audit(ctx, user, AuditWorkflowUpdated, "workflow", id, update)

	return w, nil
}

// DeleteWorkflow deletes a workflow and its executions.
func (d *Backend) DeleteWorkflow(ctx context.Context, user proto.User, id string) error {
	if err := authorize(user, access.ManageWorkflows); err != nil {
		return err
	}
	if !validID(id) {
		return proto.ErrWorkflowNotFound
	}

	orgID := user.OrganizationID()
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetWorkflowByID(ctx, tx, orgID, id); err != nil {
			return err
		}
		if err := d.store.DeleteWorkflowExecutions(ctx, tx, id); err != nil {
			return err
		}
		_, err := d.store.DeleteWorkflow(ctx, tx, orgID, id)
		return err
	}); err != nil {
		return d.wrapError(err, proto.ErrWorkflowNotFound, "error deleting workflow", "id", id)
	}

	d.audit(ctx, user, AuditWorkflowDeleted, "workflow", id, nil)

	return nil
}

// WorkflowExecutions returns the queued executions of a workflow.
func (d *Backend) WorkflowExecutions(ctx context.Context, user proto.User, id string) ([]models.WorkflowExecution, error) {
	if _, err := d.Workflow(ctx, user, id); err != nil {
		return nil, err
	}

	es, err := d.store.ListWorkflowExecutions(ctx, d.db, id)
	if err != nil {
		return nil, d.wrapError(err, proto.ErrWorkflowNotFound, "error listing workflow executions", "id", id)
	}

	return es, nil
}
