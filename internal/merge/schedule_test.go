package merge

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func runEvery(t *testing.T, ctx context.Context, interval time.Duration, job func(context.Context) error) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		Every(ctx, "test", interval, job)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Every did not return after cancellation")
	}
}

func TestEvery_ContinuesAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	runEvery(t, ctx, time.Millisecond, func(context.Context) error {
		n := runs.Add(1)
		if n == 3 {
			cancel()
		}
		if n == 2 {
			return errors.New("inputs missing")
		}
		return nil
	})

	if got := runs.Load(); got < 3 {
		t.Errorf("runs = %d, want >= 3", got)
	}
}

func TestEvery_RunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	runEvery(t, ctx, time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}
