// Package orchestrator runs the planner and closer over the pipeline
// directories, once or on a fixed interval.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/skills"
	"github.com/kingrea/taskflow/internal/skills/close_plan"
)

// Orchestrator sequences pipeline skills into sweeps.
type Orchestrator struct {
	sctx       *skill.Context
	registry   *skill.Registry
	closeReady bool
	newRunID   func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRunIDs overrides how sweep identifiers are generated.
func WithRunIDs(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRunID = fn
		}
	}
}

// WithRegistry resolves skills from reg instead of the built-in registry.
func WithRegistry(reg *skill.Registry) Option {
	return func(o *Orchestrator) {
		if reg != nil {
			o.registry = reg
		}
	}
}

// New builds an orchestrator over a skill context. Whether sweeps close fully
// ticked plans follows the project configuration.
func New(sctx *skill.Context, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sctx:     sctx,
		registry: skills.NewRegistry(),
		newRunID: uuid.NewString,
	}
	if sctx != nil && sctx.Config != nil {
		o.closeReady = sctx.Config.CloseReadyPlans()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Report summarizes one sweep.
type Report struct {
	RunID    string
	Started  time.Time
	Planned  skill.Result
	Closed   skill.Result
	Closing  bool
	Duration time.Duration
}

// OK reports whether every record in the sweep was handled.
func (r Report) OK() bool {
	if !r.Planned.OK() {
		return false
	}
	return !r.Closing || r.Closed.OK()
}

// Sweep plans every pending task and, when enabled, archives every plan whose
// checklist is fully ticked. Per-record failures are counted in the report;
// an error means the sweep could not run at all.
func (o *Orchestrator) Sweep(ctx context.Context) (Report, error) {
	if err := o.sctx.Validate("orchestrator"); err != nil {
		return Report{}, err
	}
	report := Report{RunID: o.newRunID(), Started: o.sctx.Clock()}
	// Skill diagnostics during this sweep carry its run ID.
	sctx := o.sctx.WithLogger(o.sctx.Logger.With("run " + report.RunID))
	sctx.Out.Heading("Scanning for tasks...")
	sctx.Logger.Printf("sweep started")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	planner, err := o.registry.Resolve(skills.CreatePlan, nil)
	if err != nil {
		return report, fmt.Errorf("orchestrator: %w", err)
	}
	report.Planned, err = planner.Run(sctx, nil)
	if err != nil {
		return report, fmt.Errorf("orchestrator: %s: %w", skills.CreatePlan, err)
	}

	if o.closeReady {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		closer, err := o.registry.Resolve(skills.ClosePlan, skill.Config{close_plan.OptionOnlyReady: true})
		if err != nil {
			return report, fmt.Errorf("orchestrator: %w", err)
		}
		report.Closing = true
		report.Closed, err = closer.Run(sctx, nil)
		if err != nil {
			return report, fmt.Errorf("orchestrator: %s: %w", skills.ClosePlan, err)
		}
	}

	report.Duration = o.sctx.Clock().Sub(report.Started)
	sctx.Logger.Printf("sweep finished in %s: planned %d (failed %d), closed %d (failed %d)",
		report.Duration, report.Planned.Processed, report.Planned.Failed, report.Closed.Processed, report.Closed.Failed)
	return report, nil
}

// RunLoop sweeps immediately and then every interval until ctx is cancelled.
// A sweep that cannot run is reported and retried on the next tick.
func (o *Orchestrator) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("orchestrator: interval must be positive")
	}
	out := o.sctx.Out
	out.Info("Starting orchestrator in loop mode (Ctrl+C to stop)")
	out.Info("Checking every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := o.Sweep(ctx); err != nil && ctx.Err() == nil {
			out.Failure("Sweep failed: %v", err)
			o.sctx.Logger.Printf("sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			out.Info("Stopping orchestrator...")
			return nil
		case <-ticker.C:
		}
	}
}
