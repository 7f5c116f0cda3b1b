package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type classifier struct{}

// Classify retries everything except shortage and caller cancellation.
func (classifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case errors.Is(err, ErrInsufficientRows),
		errors.Is(err, errBadCount),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return retrier.Fail
	}
	return retrier.Retry
}

// LinearBackoff returns waits base, 2*base, ... between attempts.
func LinearBackoff(attempts int, base time.Duration) []time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	backoff := make([]time.Duration, attempts-1)
	for i := range backoff {
		backoff[i] = base * time.Duration(i+1)
	}
	return backoff
}

type retrying struct {
	store   Store
	retrier *retrier.Retrier
	logger  log.Logger
}

// WithRetry makes up to attempts calls of store on transient failures with
// linear backoff. Exhausted retries yield ErrTransientStore.
func WithRetry(
	store Store,
	attempts int,
	backoff time.Duration,
	logger log.Logger,
) Store {
	return &retrying{
		store:   store,
		retrier: retrier.New(LinearBackoff(attempts, backoff), classifier{}),
		logger:  logger,
	}
}

func (r *retrying) FetchAndDelete(ctx context.Context, count int) (rows []string, err error) {
	logger := log.WithPrefix(r.logger, "method", "FetchAndDelete", "count", count)

	attempt := 0
	err = r.retrier.RunCtx(ctx, func(ctx context.Context) (err error) {
		attempt++
		if rows, err = r.store.FetchAndDelete(ctx, count); err != nil {
			level.Warn(logger).Log("msg", "fetch passwords", "attempt", attempt, "err", err)
		}
		return
	})
	if err == nil {
		return rows, nil
	}
	if (classifier{}).Classify(err) == retrier.Fail {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %d attempts: %w", ErrTransientStore, attempt, err)
}
