package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// Engine orchestrates the approval workflow of credit limit requests: order
// and step provisioning, decision recording, status derivation and history
// aggregation. Every mutating operation runs inside a single database
// transaction, so a decided step and its activated successor are applied
// together or not at all.
type Engine struct {
	db       *gorm.DB
	requests RequestRepository
	orders   OrderRepository
	steps    StepRepository
	rules    RuleRepository
	sm       *StepStateMachine
}

// NewEngine creates a workflow engine over the given repositories.
func NewEngine(db *gorm.DB, requests RequestRepository, orders OrderRepository, steps StepRepository, rules RuleRepository) *Engine {
	return &Engine{
		db:       db,
		requests: requests,
		orders:   orders,
		steps:    steps,
		rules:    rules,
		sm:       NewStepStateMachine(steps),
	}
}

// SubmitRequest persists a new credit limit request and provisions its
// workflow order and steps in the same transaction. The request surfaces as
// PENDING because step 1 is active from the moment of creation.
func (e *Engine) SubmitRequest(ctx context.Context, createReq *model.CreateRequestDTO) (*model.CreditLimitRequest, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.Amount <= 0 {
		return nil, fmt.Errorf("requested amount must be positive")
	}
	if createReq.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("customer ID cannot be empty")
	}

	paymentTermDays := createReq.PaymentTermDays
	if paymentTermDays == 0 {
		paymentTermDays = 30
	}

	var request *model.CreditLimitRequest
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request = &model.CreditLimitRequest{
			CustomerID:      createReq.CustomerID,
			Amount:          createReq.Amount,
			PaymentTermDays: paymentTermDays,
			Classification:  createReq.Classification,
			Branch:          createReq.Branch,
			Comment:         createReq.Comment,
			StatusID:        model.RequestStatusNew,
		}
		if err := e.requests.CreateRequestInTx(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		order, steps, err := e.createWorkflowInTx(ctx, tx, request)
		if err != nil {
			return err
		}

		request.StatusID = model.DeriveStatus(steps)
		if err := e.requests.UpdateRequestStatusInTx(ctx, tx, request.ID, request.StatusID); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		order.Steps = steps
		request.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id":  request.ID,
		"customer_id": request.CustomerID,
		"amount":      request.Amount,
		"steps":       len(request.Order.Steps),
	}).Info("credit limit request submitted")

	return request, nil
}

// CreateWorkflow provisions the workflow order and step chain for an already
// persisted request that has none. Returns the new order ID.
func (e *Engine) CreateWorkflow(ctx context.Context, requestID uuid.UUID) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := e.requests.GetRequestInTx(ctx, tx, requestID)
		if err != nil {
			return err
		}

		order, steps, err := e.createWorkflowInTx(ctx, tx, request)
		if err != nil {
			return err
		}

		if err := e.requests.UpdateRequestStatusInTx(ctx, tx, requestID, model.DeriveStatus(steps)); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return orderID, nil
}

// createWorkflowInTx resolves the jurisdiction chain for the request's amount
// and provisions the order with all step rows, step 1 started. An existing
// order or an empty chain aborts the transaction.
func (e *Engine) createWorkflowInTx(ctx context.Context, tx *gorm.DB, request *model.CreditLimitRequest) (*model.WorkflowOrder, []model.WorkflowStepDetail, error) {
	if existing, err := e.orders.GetOrderByRequestIDInTx(ctx, tx, request.ID); err == nil && existing != nil {
		return nil, nil, fmt.Errorf("request %s: %w", request.ID, model.ErrOrderExists)
	} else if err != nil && !isNotFound(err) {
		return nil, nil, err
	}

	rules, err := e.rules.GetRulesInTx(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load approval rules: %w", err)
	}

	chain := ResolveJurisdictions(rules, request.Amount)
	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("request %s amount %.2f: %w", request.ID, request.Amount, model.ErrNoJurisdictions)
	}

	order := &model.WorkflowOrder{
		RequestID:   request.ID,
		CurrentStep: 1,
	}
	if err := e.orders.CreateOrderInTx(ctx, tx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create workflow order: %w", err)
	}

	steps, err := e.sm.InitializeSteps(ctx, tx, order.ID, chain, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	return order, steps, nil
}

// RecordDecision applies a reviewer's verdict to the step, activates the next
// step on approval, and recomputes the owning request's status, all in one
// transaction. A decision on a non-active step fails with StepNotActiveError
// and changes nothing.
func (e *Engine) RecordDecision(ctx context.Context, stepID uuid.UUID, outcome model.DecisionOutcome, approverID uuid.UUID, comment *string) (*DecisionTransition, error) {
	if approverID == uuid.Nil {
		return nil, fmt.Errorf("approver identity is required")
	}

	var transition *DecisionTransition
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transition, err = e.sm.Decide(ctx, tx, stepID, outcome, approverID, comment, time.Now().UTC())
		if err != nil {
			return err
		}

		order, err := e.orders.GetOrderInTx(ctx, tx, transition.Step.WorkflowOrderID)
		if err != nil {
			return err
		}

		if transition.NextStep != nil {
			if err := e.orders.UpdateOrderCurrentStepInTx(ctx, tx, order.ID, transition.NextStep.StepNumber); err != nil {
				return fmt.Errorf("failed to advance order pointer: %w", err)
			}
		}

		if err := e.requests.UpdateRequestStatusInTx(ctx, tx, order.RequestID, transition.DerivedStatus); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"step_id":     stepID,
		"outcome":     outcome,
		"approver_id": approverID,
		"status":      transition.DerivedStatus.String(),
	}).Info("workflow decision recorded")

	return transition, nil
}

// GetCurrentStep returns the order's single active step, or a terminal marker
// when every step is resolved.
func (e *Engine) GetCurrentStep(ctx context.Context, orderID uuid.UUID) (*model.CurrentStepDTO, error) {
	tx := e.db.WithContext(ctx)
	if _, err := e.orders.GetOrderInTx(ctx, tx, orderID); err != nil {
		return nil, err
	}

	current, err := e.sm.CurrentStep(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &model.CurrentStepDTO{Terminal: true}, nil
	}

	dto := model.NewStepResponseDTO(current)
	return &model.CurrentStepDTO{Step: &dto}, nil
}

// DeriveRequestStatus recomputes the request's status from its step rows
// alone. A request without an order is still NEW.
func (e *Engine) DeriveRequestStatus(ctx context.Context, requestID uuid.UUID) (model.RequestStatus, error) {
	tx := e.db.WithContext(ctx)
	if _, err := e.requests.GetRequestInTx(ctx, tx, requestID); err != nil {
		return 0, err
	}

	order, err := e.orders.GetOrderByRequestIDInTx(ctx, tx, requestID)
	if err != nil {
		if isNotFound(err) {
			return model.RequestStatusNew, nil
		}
		return 0, err
	}

	steps, err := e.steps.GetStepsByOrderIDInTx(ctx, tx, order.ID)
	if err != nil {
		return 0, err
	}
	return model.DeriveStatus(steps), nil
}

// GetWorkflowHistory returns every request the customer ever submitted with
// its order, ordered steps and derived status, newest request first.
func (e *Engine) GetWorkflowHistory(ctx context.Context, customerID uuid.UUID) ([]model.HistoryEntryDTO, error) {
	tx := e.db.WithContext(ctx)
	requests, err := e.requests.GetRequestsByCustomerInTx(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	history := make([]model.HistoryEntryDTO, 0, len(requests))
	for i := range requests {
		request := &requests[i]

		order, err := e.orders.GetOrderByRequestIDInTx(ctx, tx, request.ID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}

		steps, err := e.steps.GetStepsByOrderIDInTx(ctx, tx, order.ID)
		if err != nil {
			return nil, err
		}
		sortStepsByNumber(steps)

		history = append(history, model.HistoryEntryDTO{
			Request:       model.NewRequestResponseDTO(request),
			OrderID:       order.ID,
			Steps:         model.NewStepResponseDTOs(steps),
			DerivedStatus: model.DeriveStatus(steps),
		})
	}
	return history, nil
}

// GetRequest returns a request with its order and ordered steps.
func (e *Engine) GetRequest(ctx context.Context, requestID uuid.UUID) (*model.CreditLimitRequest, error) {
	tx := e.db.WithContext(ctx)
	request, err := e.requests.GetRequestInTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	order, err := e.orders.GetOrderByRequestIDInTx(ctx, tx, request.ID)
	if err != nil {
		if isNotFound(err) {
			return request, nil
		}
		return nil, err
	}

	steps, err := e.steps.GetStepsByOrderIDInTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	sortStepsByNumber(steps)
	order.Steps = steps
	request.Order = order
	return request, nil
}

// ListRequests returns requests matching the filter.
func (e *Engine) ListRequests(ctx context.Context, filter model.RequestFilter) ([]model.CreditLimitRequest, error) {
	return e.requests.ListRequestsInTx(ctx, e.db.WithContext(ctx), filter)
}

// DeleteRequest removes a request together with its order and steps. Allowed
// only while no step carries a decision; a resolved step makes the request
// part of the audit trail and permanent.
func (e *Engine) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := e.requests.GetRequestInTx(ctx, tx, requestID); err != nil {
			return err
		}

		order, err := e.orders.GetOrderByRequestIDInTx(ctx, tx, requestID)
		if err != nil && !isNotFound(err) {
			return err
		}

		if order != nil {
			steps, err := e.steps.GetStepsByOrderIDInTx(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			for i := range steps {
				if steps[i].Resolved() {
					return fmt.Errorf("request %s: %w", requestID, model.ErrRequestNotDeletable)
				}
			}
			if err := e.steps.DeleteStepsByOrderIDInTx(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("failed to delete steps: %w", err)
			}
			if err := e.orders.DeleteOrderInTx(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("failed to delete order: %w", err)
			}
		}

		if err := e.requests.DeleteRequestInTx(ctx, tx, requestID); err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}
		return nil
	})
}

// Jurisdictions returns the approval role registry.
func (e *Engine) Jurisdictions(ctx context.Context) ([]model.JurisdictionRole, error) {
	return e.rules.GetJurisdictionsInTx(ctx, e.db.WithContext(ctx))
}

// Jurisdiction returns a single approval role by ID.
func (e *Engine) Jurisdiction(ctx context.Context, jurisdictionID uuid.UUID) (*model.JurisdictionRole, error) {
	return e.rules.GetJurisdictionInTx(ctx, e.db.WithContext(ctx), jurisdictionID)
}

// Rules returns the value-range routing rules.
func (e *Engine) Rules(ctx context.Context) ([]model.ApprovalRule, error) {
	return e.rules.GetRulesInTx(ctx, e.db.WithContext(ctx))
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
