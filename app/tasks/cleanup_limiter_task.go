package tasks

import (
	"context"
	"log/slog"
	"time"
)

type LimiterCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

// CleanupLimiterTask forgets login throttling state of idle clients.
type CleanupLimiterTask struct {
	Task
	limiter LimiterCleaner
	maxIdle time.Duration
}

func NewCleanupLimiterTask(limiter LimiterCleaner, maxIdle time.Duration) *CleanupLimiterTask {
	return &CleanupLimiterTask{
		Task:    NewTask(TaskTypeCleanupLimiter),
		limiter: limiter,
		maxIdle: maxIdle,
	}
}

func (t *CleanupLimiterTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if removed := t.limiter.Cleanup(t.maxIdle); removed > 0 {
		slog.Debug("Login limiters cleaned up", "removed", removed)
	}
	return nil
}
