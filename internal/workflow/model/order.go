package model

import "github.com/google/uuid"

// WorkflowOrder is the single tracking record binding a request to its ordered
// approval steps. Exactly one order exists per request, created in the same
// transaction as the request's step rows. The per-event metadata of the source
// system is normalized into WorkflowStepDetail rows instead of parallel arrays.
type WorkflowOrder struct {
	BaseModel
	RequestID   uuid.UUID `gorm:"type:uuid;column:request_id;not null;uniqueIndex" json:"requestId"`
	CurrentStep int       `gorm:"type:int;column:current_step;not null;default:1" json:"currentStep"`

	// Relationships
	Request *CreditLimitRequest  `gorm:"foreignKey:RequestID;references:ID" json:"-"`
	Steps   []WorkflowStepDetail `gorm:"foreignKey:WorkflowOrderID;references:ID" json:"steps,omitempty"`
}

func (o *WorkflowOrder) TableName() string {
	return "workflow_orders"
}
