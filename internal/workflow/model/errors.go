package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates a referenced request, order or step is absent.
	ErrNotFound = errors.New("record not found")

	// ErrNoJurisdictions is a configuration error: the rule set resolved zero
	// jurisdictions for a request's amount, so no workflow can be created.
	ErrNoJurisdictions = errors.New("no jurisdictions resolved for request amount")

	// ErrOrderExists indicates the request already has a workflow order.
	ErrOrderExists = errors.New("workflow order already exists for request")

	// ErrStepNotActive indicates a decision was attempted on a step that is
	// not the order's current step, or that is already resolved.
	ErrStepNotActive = errors.New("step is not active")

	// ErrRequestNotDeletable indicates the request has at least one resolved
	// step and may no longer be deleted by the requester.
	ErrRequestNotDeletable = errors.New("request has resolved steps and cannot be deleted")
)

// StepNotActiveError carries the offending step ID alongside ErrStepNotActive
// so callers can disable a stale decision control for that specific step.
type StepNotActiveError struct {
	StepID uuid.UUID
}

func (e *StepNotActiveError) Error() string {
	return fmt.Sprintf("step %s is not active or already resolved", e.StepID)
}

func (e *StepNotActiveError) Is(target error) bool {
	return target == ErrStepNotActive
}

// TransientError classifies a storage or network failure as retryable. All
// other error kinds are terminal for the operation.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
