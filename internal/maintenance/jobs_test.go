package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/loreweaver/loom/internal/core"
	"github.com/loreweaver/loom/internal/weaver"
)

type stubCheckpointer struct {
	calls int
	err   error
}

func (s *stubCheckpointer) Checkpoint(context.Context) error {
	s.calls++
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckpointJob(t *testing.T) {
	t.Parallel()

	target := &stubCheckpointer{}
	j := &CheckpointJob{Target: target, Logger: discardLogger()}

	if err := j.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if target.calls != 1 {
		t.Fatalf("checkpoint called %d times, want 1", target.calls)
	}

	target.err = errors.New("db locked")
	if err := j.Run(t.Context()); err == nil {
		t.Fatal("expected error from failing checkpoint")
	}
}

func TestCheckpointJob_DefaultSchedule(t *testing.T) {
	t.Parallel()

	j := &CheckpointJob{}
	if got := j.Schedule(); got != "*/30 * * * *" {
		t.Fatalf("Schedule() = %q", got)
	}
	j.ScheduleExpr = "0 * * * *"
	if got := j.Schedule(); got != "0 * * * *" {
		t.Fatalf("Schedule() override = %q", got)
	}
}

func TestLaneSweepJob(t *testing.T) {
	t.Parallel()

	lanes := weaver.NewLaneLock()
	lanes.Acquire("weaving-a")
	lanes.Release("weaving-a")

	j := &LaneSweepJob{Lanes: lanes, Logger: discardLogger()}
	if err := j.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := lanes.Len(); got != 0 {
		t.Fatalf("lanes remaining = %d, want 0", got)
	}
}

func TestModule_StartSchedulesAvailableTargets(t *testing.T) {
	m := &Module{}
	ctx := core.NewAppContext(discardLogger(), t.TempDir())
	if err := m.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	ctx.RegisterService("storage.checkpoint", &stubCheckpointer{})
	ctx.RegisterService("weaver.lanes", weaver.NewLaneLock())

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(t.Context()) })

	if got := len(m.scheduler.jobs); got != 2 {
		t.Fatalf("scheduled %d jobs, want 2", got)
	}
}

func TestModule_StartWithoutTargets(t *testing.T) {
	m := &Module{}
	ctx := core.NewAppContext(discardLogger(), t.TempDir())
	if err := m.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	// No services registered: the scheduler runs with zero jobs.
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(t.Context()) })

	if got := len(m.scheduler.jobs); got != 0 {
		t.Fatalf("scheduled %d jobs, want 0", got)
	}
}
