package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/creditdesk/backend/internal/workflow/model"
)

const (
	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsed      = 10 * time.Second
)

// Do runs op with bounded exponential backoff. Only failures classified as
// transient by the storage layer are retried; every other error kind is
// terminal for the operation and returned immediately.
func Do(ctx context.Context, name string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval
	policy.MaxInterval = maxInterval
	policy.MaxElapsedTime = maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !model.IsTransient(err) {
			return backoff.Permanent(err)
		}
		log.WithFields(log.Fields{
			"op":      name,
			"attempt": attempt,
			"error":   err,
		}).Warn("transient failure, retrying")
		return err
	}, backoff.WithContext(policy, ctx))
}
