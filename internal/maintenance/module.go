package maintenance

import (
	"context"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/loreweaver/loom/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Config holds the maintenance module configuration.
type Config struct {
	// CheckpointSchedule is the cron expression for storage checkpoints.
	CheckpointSchedule string `yaml:"checkpoint_schedule"`

	// SweepSchedule is the cron expression for lane sweeps.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// Module is the "maintenance.cron" module. It discovers housekeeping
// targets from the service registry at Start and schedules jobs for the
// ones that exist; a deployment without a WAL store simply runs fewer jobs.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	scheduler *Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "maintenance.cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(ctx.Logger)
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	if svc, ok := m.appCtx.Service("storage.checkpoint"); ok {
		if target, ok := svc.(Checkpointer); ok {
			if err := m.scheduler.RegisterJob(&CheckpointJob{
				Target:       target,
				Logger:       m.logger,
				ScheduleExpr: m.config.CheckpointSchedule,
			}); err != nil {
				return err
			}
		}
	}

	if svc, ok := m.appCtx.Service("weaver.lanes"); ok {
		if lanes, ok := svc.(LaneSweeper); ok {
			if err := m.scheduler.RegisterJob(&LaneSweepJob{
				Lanes:        lanes,
				Logger:       m.logger,
				ScheduleExpr: m.config.SweepSchedule,
			}); err != nil {
				return err
			}
		}
	}

	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	return m.scheduler.Stop(ctx)
}
