package merge

// schedule.go runs merge jobs on an interval for long-lived deployments.
//
// A failed run is logged and the schedule continues; the next tick retries
// with fresh inputs. The loop returns when the context is cancelled.

import (
	"context"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/logging"
)

// Every runs job immediately, then every interval until ctx is cancelled.
func Every(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) {
	log := logging.WithFields(ctx, "job", name)
	log.Info("scheduler started", "interval", interval.String())

	// Run immediately on startup
	runScheduled(ctx, name, job)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			runScheduled(ctx, name, job)
		}
	}
}

// runScheduled performs one run and logs its outcome.
func runScheduled(ctx context.Context, name string, job func(context.Context) error) {
	log := logging.WithFields(ctx, "job", name)
	start := time.Now()

	if err := job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("scheduled run failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	log.Debug("scheduled run completed", "duration_ms", time.Since(start).Milliseconds())
}
