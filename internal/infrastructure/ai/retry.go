package ai

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// RetryPolicy bounds how a backend is invoked.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
}

// RetryClient wraps a backend with a fixed number of sequential attempts,
// a constant pause between them and a deadline per attempt.
type RetryClient struct {
	backend ports.Backend
	policy  RetryPolicy
	logger  ports.Logger

	attempts atomic.Int64
}

// NewRetryClient applies defaults to zero policy fields.
func NewRetryClient(backend ports.Backend, policy RetryPolicy, logger ports.Logger) *RetryClient {
	if policy.MaxRetries < 1 {
		policy.MaxRetries = domain.DefaultMaxRetries
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	if policy.Timeout <= 0 {
		policy.Timeout = domain.DefaultBackendTimeout
	}
	return &RetryClient{backend: backend, policy: policy, logger: logger}
}

func (c *RetryClient) Name() string {
	return c.backend.Name()
}

// Attempts reports how many attempts the most recent Invoke made.
func (c *RetryClient) Attempts() int {
	return int(c.attempts.Load())
}

// Unwrap returns the wrapped backend.
func (c *RetryClient) Unwrap() ports.Backend {
	return c.backend
}

// Invoke returns the first non-blank response. After MaxRetries failed
// attempts it returns ErrBackendExhausted wrapping the last failure.
// Cancelling ctx stops immediately and returns ctx.Err().
func (c *RetryClient) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	var (
		attempts int64
		text     string
		lastErr  error
	)

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		out, err := c.attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			lastErr = err
			return err
		}
		text = out
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if c.logger == nil {
			return
		}
		c.logger.Debug("backend attempt failed", map[string]interface{}{
			"backend":  c.backend.Name(),
			"attempt":  attempts,
			"retry_in": wait.String(),
			"error":    err.Error(),
		})
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.policy.Delay), uint64(c.policy.MaxRetries-1)),
		ctx,
	)
	err := backoff.RetryNotify(operation, policy, notify)
	c.attempts.Store(attempts)

	if err == nil {
		return text, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if lastErr == nil {
		lastErr = err
	}
	return "", domain.ErrBackendExhausted.WithMessagef("%s failed after %d attempts", c.backend.Name(), attempts).Wrap(lastErr)
}

func (c *RetryClient) attempt(ctx context.Context, req ports.BackendRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	text, err := c.backend.Invoke(attemptCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrBackendTimeout) {
			return "", domain.ErrBackendTimeout.WithMessagef("%s: no response within %s", c.backend.Name(), c.policy.Timeout).Wrap(err)
		}
		return "", classify(c.backend.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", malformed(c.backend.Name(), "empty response")
	}
	return text, nil
}

var _ ports.Backend = (*RetryClient)(nil)
