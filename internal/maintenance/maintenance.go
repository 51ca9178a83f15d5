// Package maintenance provides the background job scheduler and the
// housekeeping jobs that keep a long-running loom process healthy:
// storage checkpointing and lane map sweeping.
package maintenance

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "*/5 * * * *").
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}

// Checkpointer is the subset of a storage module the checkpoint job needs.
// Defined here to avoid a dependency on any concrete storage package.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// LaneSweeper is the subset of the weaver's lane lock the sweep job needs.
type LaneSweeper interface {
	Sweep() int
}
