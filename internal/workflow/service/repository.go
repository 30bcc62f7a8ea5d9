package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// RequestRepository provides persistence for credit limit requests. All
// methods accept the transaction handle they must run on so callers can
// compose multi-write operations atomically.
type RequestRepository interface {
	CreateRequestInTx(ctx context.Context, tx *gorm.DB, req *model.CreditLimitRequest) error
	GetRequestInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*model.CreditLimitRequest, error)
	GetRequestsByCustomerInTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]model.CreditLimitRequest, error)
	ListRequestsInTx(ctx context.Context, tx *gorm.DB, filter model.RequestFilter) ([]model.CreditLimitRequest, error)
	UpdateRequestStatusInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status model.RequestStatus) error
	DeleteRequestInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) error
}

// OrderRepository provides persistence for workflow orders.
type OrderRepository interface {
	CreateOrderInTx(ctx context.Context, tx *gorm.DB, order *model.WorkflowOrder) error
	GetOrderInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*model.WorkflowOrder, error)
	GetOrderByRequestIDInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*model.WorkflowOrder, error)
	UpdateOrderCurrentStepInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, currentStep int) error
	DeleteOrderInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// StepRepository provides persistence for workflow step details. ResolveStepInTx
// and StartStepInTx are conditional updates guarding the single-active-step and
// immutability invariants; both report the number of rows they touched so the
// caller can detect a lost race.
type StepRepository interface {
	CreateStepsInTx(ctx context.Context, tx *gorm.DB, steps []model.WorkflowStepDetail) ([]model.WorkflowStepDetail, error)
	GetStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*model.WorkflowStepDetail, error)
	GetStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]model.WorkflowStepDetail, error)

	// ResolveStepInTx sets approval, finished_at, approver and comments on the
	// step only if approval IS NULL and started_at IS NOT NULL.
	ResolveStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, approval bool, approverID uuid.UUID, comment *string, decidedAt time.Time) (int64, error)

	// StartStepInTx sets started_at on the step only if it is still unstarted
	// and undecided.
	StartStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, startedAt time.Time) (int64, error)

	DeleteStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// RuleRepository provides read access to the jurisdiction registry and the
// value-range routing rules.
type RuleRepository interface {
	GetRulesInTx(ctx context.Context, tx *gorm.DB) ([]model.ApprovalRule, error)
	GetJurisdictionsInTx(ctx context.Context, tx *gorm.DB) ([]model.JurisdictionRole, error)
	GetJurisdictionInTx(ctx context.Context, tx *gorm.DB, jurisdictionID uuid.UUID) (*model.JurisdictionRole, error)
}
