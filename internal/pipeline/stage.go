package pipeline

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/yungbote/storyjam-backend/internal/logger"
)

type RetryPolicy struct {
	MaxAttempts int
	Retryable   func(err error) bool

	AttemptTimeout time.Duration // default 90s
	MinBackoff     time.Duration // default 1s
	MaxBackoff     time.Duration // default 10s
	JitterFrac     float64       // default 0.20
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: 90 * time.Second,
		MinBackoff:     1 * time.Second,
		MaxBackoff:     10 * time.Second,
		JitterFrac:     0.20,
	}
}

// StageExecutor runs one inference call with bounded retries. It performs no
// store mutations itself: the caller commits the result (or the documented
// fallback) exactly once after Execute returns.
type StageExecutor struct {
	log    *logger.Logger
	policy RetryPolicy
}

func NewStageExecutor(log *logger.Logger, policy RetryPolicy) *StageExecutor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = 90 * time.Second
	}
	return &StageExecutor{
		log:    log.With("component", "StageExecutor"),
		policy: policy,
	}
}

// Execute invokes attempt up to MaxAttempts times with exponential backoff.
// Each attempt gets its own timeout so a hung inference call counts as a
// failed attempt instead of blocking the stage forever.
func (e *StageExecutor) Execute(ctx context.Context, stage string, attempt func(ctx context.Context) error) error {
	var last error
	for n := 1; n <= e.policy.MaxAttempts; n++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.policy.AttemptTimeout)
		err := attempt(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		last = err

		if errors.Is(err, context.Canceled) {
			return err
		}
		if e.policy.Retryable != nil && !e.policy.Retryable(err) {
			e.log.Warn("Stage failed with non-retryable error",
				"stage", stage,
				"attempt", n,
				"error", err.Error(),
			)
			return err
		}
		if n == e.policy.MaxAttempts {
			break
		}

		sleepFor := computeBackoff(e.policy, n)
		e.log.Warn("Stage attempt failed; retrying",
			"stage", stage,
			"attempt", n,
			"max_attempts", e.policy.MaxAttempts,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
	}

	e.log.Warn("Stage exhausted retries",
		"stage", stage,
		"max_attempts", e.policy.MaxAttempts,
		"error", last.Error(),
	)
	return last
}

func computeBackoff(r RetryPolicy, attempts int) time.Duration {
	minB := r.MinBackoff
	maxB := r.MaxBackoff
	j := r.JitterFrac
	if minB <= 0 {
		minB = 1 * time.Second
	}
	if maxB <= 0 {
		maxB = 10 * time.Second
	}
	if j <= 0 {
		j = 0.20
	}
	if attempts < 1 {
		attempts = 1
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempts-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * j
	low := float64(d) - delta
	high := float64(d) + delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*(high-low))
}
