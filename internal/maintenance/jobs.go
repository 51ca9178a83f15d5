package maintenance

import (
	"context"
	"fmt"
	"log/slog"
)

// CheckpointJob flushes the storage module's write-ahead log into its main
// database file on a schedule, bounding WAL growth.
type CheckpointJob struct {
	Target       Checkpointer
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/30 * * * *"
}

// Compile-time interface check.
var _ Job = (*CheckpointJob)(nil)

// Name implements Job.
func (j *CheckpointJob) Name() string { return "storage_checkpoint" }

// Schedule implements Job.
func (j *CheckpointJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/30 * * * *"
}

// Run flushes the WAL.
func (j *CheckpointJob) Run(ctx context.Context) error {
	if err := j.Target.Checkpoint(ctx); err != nil {
		return fmt.Errorf("maintenance: checkpoint: %w", err)
	}
	j.Logger.Debug("maintenance: storage checkpointed")
	return nil
}

// LaneSweepJob drops idle per-weaving locks from the weaver's lane map so
// it does not grow without bound across many weavings.
type LaneSweepJob struct {
	Lanes        LaneSweeper
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*LaneSweepJob)(nil)

// Name implements Job.
func (j *LaneSweepJob) Name() string { return "lane_sweep" }

// Schedule implements Job.
func (j *LaneSweepJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run removes idle lanes.
func (j *LaneSweepJob) Run(_ context.Context) error {
	if removed := j.Lanes.Sweep(); removed > 0 {
		j.Logger.Debug("maintenance: swept idle lanes", "count", removed)
	}
	return nil
}
