package scheduler

import "context"

// Job is a unit of work run by the WorkerPool.
type Job interface {
	Execute(ctx context.Context) error
	// Key identifies the job in logs and spans.
	Key() string
	Description() string
}
