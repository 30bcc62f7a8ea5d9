package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creditdesk/backend/internal/workflow/model"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeds First Try", func(t *testing.T) {
		calls := 0
		err := Do(ctx, "noop", func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Retries Transient Failures", func(t *testing.T) {
		calls := 0
		err := Do(ctx, "flaky read", func() error {
			calls++
			if calls < 3 {
				return &model.TransientError{Op: "read", Err: errors.New("connection reset")}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Does Not Retry Domain Errors", func(t *testing.T) {
		calls := 0
		err := Do(ctx, "lookup", func() error {
			calls++
			return model.ErrNotFound
		})
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("Does Not Retry Wrapped Domain Errors", func(t *testing.T) {
		calls := 0
		wrapped := errors.New("request abc: " + model.ErrStepNotActive.Error())
		err := Do(ctx, "decide", func() error {
			calls++
			return wrapped
		})
		assert.ErrorIs(t, err, wrapped)
		assert.Equal(t, 1, calls)
	})

	t.Run("Stops When Context Is Canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		calls := 0
		err := Do(canceled, "doomed read", func() error {
			calls++
			cancel()
			return &model.TransientError{Op: "read", Err: errors.New("connection reset")}
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
