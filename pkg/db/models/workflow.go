package models

import "time"

// Workflow triggers.
const (
	TriggerUserRegistered     = "user_registered"
	TriggerMembershipApproved = "membership_approved"
)

// WorkflowExecutionPending is the status of newly enqueued executions.
const WorkflowExecutionPending = "pending"

// Workflow is an automation definition fired by a trigger.
type Workflow struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	TriggerType    string    `db:"trigger_type" json:"trigger_type"`
	TriggerConfig  JSON      `db:"trigger_config" json:"trigger_config"`
	Actions        JSON      `db:"actions" json:"actions"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// WorkflowExecution is a queued run of a workflow. Executions are
// processed outside this server.
type WorkflowExecution struct {
	ID          string    `db:"id" json:"id"`
	WorkflowID  string    `db:"workflow_id" json:"workflow_id"`
	UserID      *string   `db:"user_id" json:"user_id"`
	Status      string    `db:"status" json:"status"`
	TriggerData JSON      `db:"trigger_data" json:"trigger_data"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
