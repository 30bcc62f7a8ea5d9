package repository

import "github.com/creditdesk/backend/internal/workflow/model"

// wrapStorageErr classifies a storage failure as retryable. Not-found
// conditions are mapped to model.ErrNotFound before reaching here; everything
// else coming out of the driver is a transient I/O failure from the engine's
// point of view.
func wrapStorageErr(op string, err error) error {
	return &model.TransientError{Op: op, Err: err}
}
