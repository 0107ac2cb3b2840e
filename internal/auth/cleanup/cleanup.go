// Package cleanup runs periodic deletion of rows whose lifetime has passed:
// expired refresh tokens, spent denylist entries, old notifications.
package cleanup

import (
	"context"
	"time"

	"github.com/inkwell/blog-backend/internal/common/db"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

// DeleteFunc removes expired rows and reports how many went away.
type DeleteFunc func(ctx context.Context) (int64, error)

type Job struct {
	Name     string
	Interval time.Duration
	Delete   DeleteFunc
	// Observe is called with the number of deleted rows, for metrics.
	Observe func(deleted int64)
}

// Run loops until the context is cancelled. One pass runs immediately so a
// restart does not wait a full interval to catch up.
func Run(ctx context.Context, job Job, log *logger.Logger) {
	runOnce(ctx, job, log)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("cleanup %s stopped", job.Name)
			return
		case <-ticker.C:
			runOnce(ctx, job, log)
		}
	}
}

// runOnce retries transient database errors within a pass; a sweep that runs
// while the database restarts should not have to wait a whole interval.
func runOnce(ctx context.Context, job Job, log *logger.Logger) {
	var deleted int64
	err := db.RetryWithBackoff(ctx, log, db.DefaultRetryConfig, func() error {
		var err error
		deleted, err = job.Delete(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Errorf("cleanup %s failed: %v", job.Name, err)
		return
	}

	if job.Observe != nil && deleted > 0 {
		job.Observe(deleted)
	}
	if deleted > 0 {
		log.Infof("cleanup %s removed %d rows", job.Name, deleted)
	}
}
