package model

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequestDTO is the payload for submitting a new credit limit request.
// The workflow order and its steps are provisioned in the same transaction.
type CreateRequestDTO struct {
	CustomerID      uuid.UUID `json:"customerId" binding:"required"`
	Amount          float64   `json:"creditLimitAmt" binding:"required,gt=0"`
	PaymentTermDays int       `json:"paymentTermDays" binding:"omitempty,gt=0"`
	Classification  string    `json:"classification"`
	Branch          string    `json:"branch"`
	Comment         string    `json:"comment"`
}

// DecisionDTO is the payload for deciding the current step of an order. The
// approver identity comes from the request's auth context, never the body.
type DecisionDTO struct {
	Outcome DecisionOutcome `json:"outcome" binding:"required"`
	Comment string          `json:"comment"`
}

// StepResponseDTO represents one step detail in API responses.
type StepResponseDTO struct {
	ID             uuid.UUID  `json:"id"`
	StepNumber     int        `json:"workflowStep"`
	JurisdictionID uuid.UUID  `json:"jurisdictionId"`
	Jurisdiction   string     `json:"jurisdiction,omitempty"`
	Approval       *bool      `json:"approval"`
	StartedAt      *time.Time `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt"`
	ApproverID     *uuid.UUID `json:"approver"`
	Comments       *string    `json:"comments"`
}

// RequestResponseDTO represents a credit limit request with its workflow state.
type RequestResponseDTO struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customerId"`
	Amount          float64           `json:"creditLimitAmt"`
	PaymentTermDays int               `json:"paymentTermDays"`
	Classification  string            `json:"classification"`
	Branch          string            `json:"branch"`
	Comment         string            `json:"comment"`
	Status          RequestStatus     `json:"statusId"`
	StatusName      string            `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	OrderID         *uuid.UUID        `json:"orderId,omitempty"`
	Steps           []StepResponseDTO `json:"steps,omitempty"`
}

// DecisionResultDTO is returned after a step decision is recorded.
type DecisionResultDTO struct {
	Step          StepResponseDTO  `json:"step"`
	NextStep      *StepResponseDTO `json:"nextStep,omitempty"`
	RequestStatus RequestStatus    `json:"requestStatusId"`
	Terminal      bool             `json:"terminal"`
}

// CurrentStepDTO is the response of the current-step lookup. Terminal is true
// when every step of the order is resolved.
type CurrentStepDTO struct {
	Terminal bool             `json:"terminal"`
	Step     *StepResponseDTO `json:"step,omitempty"`
}

// HistoryEntryDTO is one request of a customer's workflow history, newest first.
type HistoryEntryDTO struct {
	Request       RequestResponseDTO `json:"request"`
	OrderID       uuid.UUID          `json:"orderId"`
	Steps         []StepResponseDTO  `json:"steps"`
	DerivedStatus RequestStatus      `json:"derivedStatusId"`
}

// NewStepResponseDTO maps a step row to its API representation.
func NewStepResponseDTO(step *WorkflowStepDetail) StepResponseDTO {
	dto := StepResponseDTO{
		ID:             step.ID,
		StepNumber:     step.StepNumber,
		JurisdictionID: step.JurisdictionID,
		Approval:       step.Approval,
		StartedAt:      step.StartedAt,
		FinishedAt:     step.FinishedAt,
		ApproverID:     step.ApproverID,
		Comments:       step.Comments,
	}
	if step.Jurisdiction != nil {
		dto.Jurisdiction = step.Jurisdiction.Name
	}
	return dto
}

// NewStepResponseDTOs maps a slice of step rows, preserving order.
func NewStepResponseDTOs(steps []WorkflowStepDetail) []StepResponseDTO {
	dtos := make([]StepResponseDTO, len(steps))
	for i := range steps {
		dtos[i] = NewStepResponseDTO(&steps[i])
	}
	return dtos
}

// NewRequestResponseDTO maps a request row, including its order and steps when
// they are loaded.
func NewRequestResponseDTO(req *CreditLimitRequest) RequestResponseDTO {
	dto := RequestResponseDTO{
		ID:              req.ID,
		CustomerID:      req.CustomerID,
		Amount:          req.Amount,
		PaymentTermDays: req.PaymentTermDays,
		Classification:  req.Classification,
		Branch:          req.Branch,
		Comment:         req.Comment,
		Status:          req.StatusID,
		StatusName:      req.StatusID.String(),
		CreatedAt:       req.CreatedAt,
	}
	if req.Order != nil {
		orderID := req.Order.ID
		dto.OrderID = &orderID
		dto.Steps = NewStepResponseDTOs(req.Order.Steps)
	}
	return dto
}
