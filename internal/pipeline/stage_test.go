package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/storyjam-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		MinBackoff:     time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		JitterFrac:     0.01,
	}
}

func TestExecuteRetriesUntilExhausted(t *testing.T) {
	exec := NewStageExecutor(testLogger(t), fastPolicy())

	calls := 0
	wantErr := errors.New("model unavailable")
	err := exec.Execute(context.Background(), "summary", func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error: want=%v got=%v", wantErr, err)
	}
	if calls != 3 {
		t.Fatalf("attempts: want=3 got=%d", calls)
	}
}

func TestExecuteStopsAfterFirstSuccess(t *testing.T) {
	exec := NewStageExecutor(testLogger(t), fastPolicy())

	calls := 0
	err := exec.Execute(context.Background(), "details", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 2 {
		t.Fatalf("attempts: want=2 got=%d", calls)
	}
}

func TestExecuteNonRetryableShortCircuits(t *testing.T) {
	policy := fastPolicy()
	fatal := errors.New("schema rejected")
	policy.Retryable = func(err error) bool { return !errors.Is(err, fatal) }
	exec := NewStageExecutor(testLogger(t), policy)

	calls := 0
	err := exec.Execute(context.Background(), "summary", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("attempt failed: %w", fatal)
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("error: want=%v got=%v", fatal, err)
	}
	if calls != 1 {
		t.Fatalf("attempts: want=1 got=%d", calls)
	}
}

func TestExecuteRespectsParentCancellation(t *testing.T) {
	exec := NewStageExecutor(testLogger(t), fastPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := exec.Execute(ctx, "embedding", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: want=%v got=%v", context.Canceled, err)
	}
	if calls != 1 {
		t.Fatalf("attempts: want=1 got=%d", calls)
	}
}

func TestExecuteAttemptTimeoutCountsAsFailure(t *testing.T) {
	policy := fastPolicy()
	policy.AttemptTimeout = 5 * time.Millisecond
	exec := NewStageExecutor(testLogger(t), policy)

	calls := 0
	err := exec.Execute(context.Background(), "transcript", func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error: want=%v got=%v", context.DeadlineExceeded, err)
	}
	if calls != 3 {
		t.Fatalf("attempts: want=3 got=%d", calls)
	}
}

func TestComputeBackoffWithinJitterBounds(t *testing.T) {
	policy := RetryPolicy{
		MinBackoff: time.Second,
		MaxBackoff: 10 * time.Second,
		JitterFrac: 0.20,
	}
	for attempt := 1; attempt <= 6; attempt++ {
		base := time.Duration(float64(time.Second) * float64(int(1)<<(attempt-1)))
		if base > policy.MaxBackoff {
			base = policy.MaxBackoff
		}
		low := time.Duration(float64(base) * 0.8)
		high := time.Duration(float64(base) * 1.2)
		for i := 0; i < 50; i++ {
			got := computeBackoff(policy, attempt)
			if got < low || got > high {
				t.Fatalf("attempt %d: backoff out of bounds: want=[%s,%s] got=%s", attempt, low, high, got)
			}
		}
	}
}
