package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func noSleep(ctx context.Context, d time.Duration) bool { return true }

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy().WithSleep(noSleep), nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	isRetryable := func(err error) bool { return errors.Is(err, errTransient) }

	err := Do(context.Background(), DefaultPolicy().WithSleep(noSleep), isRetryable, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	isRetryable := func(err error) bool { return true }

	p := Policy{MaxAttempts: 5, Delay: time.Millisecond}.WithSleep(noSleep)
	err := Do(context.Background(), p, isRetryable, func() error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want errTransient", err)
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	isRetryable := func(err error) bool { return errors.Is(err, errTransient) }

	err := Do(context.Background(), DefaultPolicy().WithSleep(noSleep), isRetryable, func() error {
		calls++
		return errFatal
	})
	if !errors.Is(err, errFatal) {
		t.Fatalf("err = %v, want errFatal", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, DefaultPolicy().WithSleep(noSleep), func(error) bool { return true }, func() error {
		calls++
		cancel()
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want errTransient", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: cancelled context must stop retries", calls)
	}
}

func TestDo_SleepAbortStopsRetries(t *testing.T) {
	calls := 0
	p := DefaultPolicy().WithSleep(func(ctx context.Context, d time.Duration) bool { return false })

	err := Do(context.Background(), p, func(error) bool { return true }, func() error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want errTransient", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
