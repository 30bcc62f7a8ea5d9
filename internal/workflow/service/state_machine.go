package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// DecisionTransition is the result of recording a decision on a step.
type DecisionTransition struct {
	// Step is the resolved step after the decision was applied.
	Step model.WorkflowStepDetail

	// NextStep is the step activated by an approval, nil when the decision was
	// terminal for the order.
	NextStep *model.WorkflowStepDetail

	// DerivedStatus is the request status recomputed from the full step set.
	DerivedStatus model.RequestStatus
}

// Terminal reports whether the order reached an absorbing state.
func (t *DecisionTransition) Terminal() bool {
	return t.DerivedStatus.Terminal()
}

// StepStateMachine drives an order's chain of step details, enforcing the
// single-active-step and strict-forward-progress invariants. Every method runs
// on the transaction handle it is given; the engine owns transaction scope.
type StepStateMachine struct {
	steps StepRepository
}

// NewStepStateMachine creates a new instance of StepStateMachine.
func NewStepStateMachine(steps StepRepository) *StepStateMachine {
	return &StepStateMachine{steps: steps}
}

// InitializeSteps provisions one step per jurisdiction with ascending step
// numbers and starts step 1 only. The jurisdiction list must already be
// resolved and ordered; an empty list is a configuration error surfaced to
// the caller, never a silent no-op workflow.
func (sm *StepStateMachine) InitializeSteps(
	ctx context.Context,
	tx *gorm.DB,
	orderID uuid.UUID,
	jurisdictionIDs []uuid.UUID,
	now time.Time,
) ([]model.WorkflowStepDetail, error) {
	if len(jurisdictionIDs) == 0 {
		return nil, model.ErrNoJurisdictions
	}

	startedAt := now
	steps := make([]model.WorkflowStepDetail, 0, len(jurisdictionIDs))
	for i, jurisdictionID := range jurisdictionIDs {
		step := model.WorkflowStepDetail{
			WorkflowOrderID: orderID,
			StepNumber:      i + 1,
			JurisdictionID:  jurisdictionID,
		}
		if i == 0 {
			step.StartedAt = &startedAt
		}
		steps = append(steps, step)
	}

	created, err := sm.steps.CreateStepsInTx(ctx, tx, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow steps: %w", err)
	}
	return created, nil
}

// Decide records a decision on the step and, on approval, activates the next
// step of the same order. The resolve is a conditional update on
// "approval IS NULL AND started_at IS NOT NULL"; losing that race yields
// StepNotActiveError and leaves the step untouched, which keeps a duplicate
// decision attempt safe under concurrent reviewers.
func (sm *StepStateMachine) Decide(
	ctx context.Context,
	tx *gorm.DB,
	stepID uuid.UUID,
	outcome model.DecisionOutcome,
	approverID uuid.UUID,
	comment *string,
	now time.Time,
) (*DecisionTransition, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("unknown decision outcome %q", outcome)
	}

	step, err := sm.steps.GetStepInTx(ctx, tx, stepID)
	if err != nil {
		return nil, err
	}

	approval := outcome == model.DecisionApprove
	affected, err := sm.steps.ResolveStepInTx(ctx, tx, stepID, approval, approverID, comment, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve step %s: %w", stepID, err)
	}
	if affected == 0 {
		// Already resolved, or provisioned but never started.
		return nil, &model.StepNotActiveError{StepID: stepID}
	}

	siblings, err := sm.steps.GetStepsByOrderIDInTx(ctx, tx, step.WorkflowOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for order %s: %w", step.WorkflowOrderID, err)
	}
	sortStepsByNumber(siblings)

	transition := &DecisionTransition{}
	var next *model.WorkflowStepDetail
	if approval {
		next = stepAfter(siblings, step.StepNumber)
	}

	if next != nil {
		started, err := sm.steps.StartStepInTx(ctx, tx, next.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to activate step %d of order %s: %w", next.StepNumber, step.WorkflowOrderID, err)
		}
		if started == 0 {
			// The successor was already started or resolved. Correct engine
			// usage never produces this; refuse to continue on bad data.
			return nil, fmt.Errorf("step %d of order %s was already started: %w", next.StepNumber, step.WorkflowOrderID, model.ErrStepNotActive)
		}
		startedAt := now
		next.StartedAt = &startedAt
	}

	// Refresh the in-memory view of the decided step before deriving status.
	for i := range siblings {
		if siblings[i].ID == stepID {
			finishedAt := now
			siblings[i].Approval = &approval
			siblings[i].FinishedAt = &finishedAt
			siblings[i].ApproverID = &approverID
			siblings[i].Comments = comment
			transition.Step = siblings[i]
		}
		if next != nil && siblings[i].ID == next.ID {
			siblings[i].StartedAt = next.StartedAt
		}
	}

	transition.NextStep = next
	transition.DerivedStatus = model.DeriveStatus(siblings)
	return transition, nil
}

// CurrentStep returns the single step with approval unset and started_at set,
// or nil when all steps of the order are resolved.
func (sm *StepStateMachine) CurrentStep(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*model.WorkflowStepDetail, error) {
	steps, err := sm.steps.GetStepsByOrderIDInTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for order %s: %w", orderID, err)
	}
	return ActiveStep(orderID, steps), nil
}

// ActiveStep picks the current step out of an order's step set. More than one
// active step is impossible under correct engine usage; the lowest step number
// is authoritative and the anomaly is logged as a data-integrity warning, not
// silently ignored.
func ActiveStep(orderID uuid.UUID, steps []model.WorkflowStepDetail) *model.WorkflowStepDetail {
	sortStepsByNumber(steps)

	var current *model.WorkflowStepDetail
	active := 0
	for i := range steps {
		if steps[i].Active() {
			active++
			if current == nil {
				current = &steps[i]
			}
		}
	}
	if active > 1 {
		log.WithFields(log.Fields{
			"order_id":     orderID,
			"active_steps": active,
			"current_step": current.StepNumber,
		}).Warn("order has more than one active step, using lowest step number")
	}
	return current
}

// stepAfter returns the step with number n+1, or nil when the chain is exhausted.
func stepAfter(steps []model.WorkflowStepDetail, n int) *model.WorkflowStepDetail {
	for i := range steps {
		if steps[i].StepNumber == n+1 {
			return &steps[i]
		}
	}
	return nil
}

func sortStepsByNumber(steps []model.WorkflowStepDetail) {
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepNumber < steps[j].StepNumber
	})
}
