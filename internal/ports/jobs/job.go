package jobs

import (
	"context"
	"time"
)

// Job a periodic task that can be scheduled
type Job interface {
	Name() string
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) error
}
