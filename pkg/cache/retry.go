package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrNetwork marks backend failures (timeouts, dropped or refused
// connections) that were still failing after every retry.
var ErrNetwork = errors.New("network error")

// RetryPolicy bounds RetryWithBackoff: at most Attempts tries, waiting Delay
// after the first failure and doubling the wait after each further one.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var (
	// opRetry covers Get, Set and Delete; tests shorten it.
	opRetry = RetryPolicy{Attempts: 3, Delay: 100 * time.Millisecond}

	// connectRetry covers the ping made by NewRedisCache.
	connectRetry = RetryPolicy{Attempts: 3, Delay: 200 * time.Millisecond}
)

// RetryWithBackoff runs fn until it succeeds, fails with an error that is
// not transient, or p.Attempts tries are used up. Non-transient errors are
// returned as is; an exhausted transient failure is wrapped in ErrNetwork.
// Cancelling ctx while waiting returns ctx.Err().
func RetryWithBackoff(ctx context.Context, p RetryPolicy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	if errors.Is(lastErr, ErrNetwork) {
		return lastErr
	}
	return fmt.Errorf("%w: %w", ErrNetwork, lastErr)
}

// isTransient reports whether err may clear up on its own.
func isTransient(err error) bool {
	switch {
	case errors.Is(err, ErrNetwork),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
