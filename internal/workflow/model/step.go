package model

import (
	"time"

	"github.com/google/uuid"
)

// DecisionOutcome is a reviewer's verdict on a workflow step.
type DecisionOutcome string

const (
	DecisionApprove DecisionOutcome = "approve"
	DecisionReject  DecisionOutcome = "reject"
)

// Valid reports whether the outcome is one of the known verdicts.
func (d DecisionOutcome) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// WorkflowStepDetail is one jurisdiction's pending or resolved approval record
// within an order. Approval is tri-state: nil while pending, then immutable
// once set. A step is the order's current step when its approval is nil and
// started_at is populated.
type WorkflowStepDetail struct {
	BaseModel
	WorkflowOrderID uuid.UUID  `gorm:"type:uuid;column:workflow_order_id;not null;index;uniqueIndex:idx_order_step,priority:1" json:"workflowOrderId"`
	StepNumber      int        `gorm:"type:int;column:workflow_step;not null;uniqueIndex:idx_order_step,priority:2" json:"workflowStep"`
	JurisdictionID  uuid.UUID  `gorm:"type:uuid;column:jurisdiction_id;not null" json:"jurisdictionId"`
	Approval        *bool      `gorm:"type:boolean;column:approval" json:"approval"`
	StartedAt       *time.Time `gorm:"type:timestamptz;column:started_at" json:"startedAt"`
	FinishedAt      *time.Time `gorm:"type:timestamptz;column:finished_at" json:"finishedAt"`
	ApproverID      *uuid.UUID `gorm:"type:uuid;column:approver" json:"approver"`
	Comments        *string    `gorm:"type:text;column:comments" json:"comments"`

	// Relationships
	Order        *WorkflowOrder    `gorm:"foreignKey:WorkflowOrderID;references:ID" json:"-"`
	Jurisdiction *JurisdictionRole `gorm:"foreignKey:JurisdictionID;references:ID" json:"jurisdiction,omitempty"`
}

func (s *WorkflowStepDetail) TableName() string {
	return "workflow_step_details"
}

// Resolved reports whether the step carries a decision.
func (s *WorkflowStepDetail) Resolved() bool {
	return s.Approval != nil
}

// Active reports whether the step is the one currently awaiting a decision.
func (s *WorkflowStepDetail) Active() bool {
	return s.Approval == nil && s.StartedAt != nil
}
