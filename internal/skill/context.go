package skill

import (
	"fmt"
	"time"

	"github.com/kingrea/taskflow/internal/artifact"
	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/logbook"
	"github.com/kingrea/taskflow/internal/logging"
)

// Context carries shared runtime dependencies into every skill.
type Context struct {
	Config  *config.Config
	Store   *artifact.Store
	Logbook *logbook.Logbook
	Logger  *logging.Logger
	Out     *console.Printer
	Now     func() time.Time
}

// NewContext wires a store and activity log for cfg's project root. logger
// and out may be nil.
func NewContext(cfg *config.Config, logger *logging.Logger, out *console.Printer) (*Context, error) {
	if cfg == nil {
		return nil, fmt.Errorf("skill: config is required")
	}
	book, err := logbook.New(cfg.DashboardPath())
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = console.Discard()
	}
	return &Context{
		Config:  cfg,
		Store:   artifact.NewStore(cfg.Layout()),
		Logbook: book,
		Logger:  logger,
		Out:     out,
		Now:     time.Now,
	}, nil
}

// Validate ensures a skill receives a usable context.
func (ctx *Context) Validate(skillID string) error {
	if ctx == nil {
		return fmt.Errorf("%s: context is nil", skillID)
	}
	if ctx.Config == nil {
		return fmt.Errorf("%s: config is required", skillID)
	}
	if ctx.Store == nil {
		return fmt.Errorf("%s: task store is required", skillID)
	}
	if ctx.Logbook == nil {
		return fmt.Errorf("%s: activity log is required", skillID)
	}
	return nil
}

// Clock returns the context clock, defaulting to time.Now.
func (ctx *Context) Clock() time.Time {
	if ctx == nil || ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

// WithOutput returns a copy of the context that prints to out.
func (ctx *Context) WithOutput(out *console.Printer) *Context {
	clone := *ctx
	clone.Out = out
	return &clone
}

// WithLogger returns a copy of the context that logs through logger.
func (ctx *Context) WithLogger(logger *logging.Logger) *Context {
	clone := *ctx
	clone.Logger = logger
	return &clone
}

// Record writes an activity entry. Failures are reported as status lines and
// diagnostics only: the transition that triggered the entry has already
// happened and stays in place.
func (ctx *Context) Record(message string) {
	if err := ctx.Logbook.Append(message); err != nil {
		ctx.Out.Failure("Could not update activity log: %v", err)
		ctx.Logger.Printf("activity log append failed: %v", err)
	}
}
