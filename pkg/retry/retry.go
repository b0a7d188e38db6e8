// Package retry re-runs idempotent operations on transient storage failures.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxElapsed = 5 * time.Second
	DefaultInitial    = 50 * time.Millisecond
)

// Policy decides how long and on which errors an operation is retried.
// A nil Retryable retries nothing.
type Policy struct {
	MaxElapsed time.Duration
	Initial    time.Duration
	Retryable  func(error) bool
}

func (p Policy) newBackOff() backoff.BackOff {
	// BackOff implementations are stateful; build a fresh one per call.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = DefaultInitial
	if p.Initial > 0 {
		bo.InitialInterval = p.Initial
	}
	bo.MaxElapsedTime = DefaultMaxElapsed
	if p.MaxElapsed > 0 {
		bo.MaxElapsedTime = p.MaxElapsed
	}
	return bo
}

// Do runs op until it succeeds, returns a non-retryable error, the policy gives up, or ctx
// is done. The last error from op is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && p.Retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(p.newBackOff(), ctx))
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
