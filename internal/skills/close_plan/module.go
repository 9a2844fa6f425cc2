package close_plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kingrea/taskflow/internal/artifact"
	"github.com/kingrea/taskflow/internal/skill"
)

const (
	skillID      = "close-plan"
	skillVersion = "1.0.0"

	// OptionOnlyReady restricts a batch close to plans with every item ticked.
	OptionOnlyReady = "only_ready"
)

// ClosePlanSkill marks plans completed and archives them.
type ClosePlanSkill struct {
	*skill.Base
	onlyReady bool
}

// Option customizes the closer.
type Option func(*ClosePlanSkill)

// OnlyReady skips plans with unchecked items during a batch close.
func OnlyReady(enabled bool) Option {
	return func(s *ClosePlanSkill) {
		s.onlyReady = enabled
	}
}

// Register installs the skill factory into the registry.
func Register(reg *skill.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(skillID, func(cfg skill.Config) (skill.Skill, error) {
		return New(OnlyReady(cfg.Bool(OptionOnlyReady, false))), nil
	})
}

// New constructs the closer.
func New(opts ...Option) *ClosePlanSkill {
	base := skill.NewBase(skill.Info{
		ID:          skillID,
		Name:        "Close Plan",
		Description: "Marks plans completed and moves them to Archive/ under a timestamped name.",
		Version:     skillVersion,
	})
	s := &ClosePlanSkill{Base: &base}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run closes the named plans, or every plan when args is empty.
func (s *ClosePlanSkill) Run(ctx *skill.Context, args []string) (skill.Result, error) {
	if err := ctx.Validate(skillID); err != nil {
		return skill.Result{Status: skill.StatusFailed}, err
	}
	var plans []string
	failed := 0
	if len(args) == 0 {
		listed, err := ctx.Store.ListPlans()
		if err != nil {
			return skill.Result{Status: skill.StatusFailed}, fmt.Errorf("%s: list plans: %w", skillID, err)
		}
		plans = listed
		if s.onlyReady {
			plans = s.readyOnly(ctx, plans)
		}
	} else {
		for _, name := range args {
			path, err := ctx.Store.Resolve(name, ctx.Store.Layout().Plans)
			if err != nil {
				ctx.Out.Failure("Plan file %s not found in Plans/ or root directory", name)
				ctx.Logger.Printf("%s: resolve %s: %v", skillID, name, err)
				failed++
				continue
			}
			plans = append(plans, path)
		}
	}
	if len(plans) == 0 && failed == 0 {
		ctx.Out.Info("No plan files found to close.")
		return skill.Summarize(0, 0, "no plans to close"), nil
	}

	closed := 0
	for _, plan := range plans {
		archived, err := s.Close(ctx, plan)
		if err != nil {
			reportFailure(ctx, plan, err)
			failed++
			continue
		}
		ctx.Out.Success("Plan %s marked as completed and archived to %s", filepath.Base(plan), filepath.Base(archived))
		closed++
	}
	ctx.Out.Summary("Closed and archived", closed, closed+failed, "plan")
	return skill.Summarize(closed, failed, fmt.Sprintf("closed %d of %d plans", closed, closed+failed)), nil
}

// Close completes and archives one plan, returning its archive path.
func (s *ClosePlanSkill) Close(ctx *skill.Context, planPath string) (string, error) {
	if err := ctx.Validate(skillID); err != nil {
		return "", err
	}
	archiveDir := ctx.Store.Layout().Archive
	name := filepath.Base(planPath)
	now := ctx.Clock()

	archiveName := ctx.Store.UniqueName(artifact.ArchiveNameFor(name, now.UTC()), archiveDir)
	archived, err := ctx.Store.Move(planPath, archiveDir, archiveName, artifact.CollisionFail)
	if err != nil {
		return "", fmt.Errorf("%s: claim %s: %w", skillID, name, err)
	}

	doc, err := ctx.Store.ReadDocument(archived)
	if err != nil {
		return "", s.restore(ctx, archived, planPath, err)
	}
	if !doc.HasHeader {
		doc.Body = "\n" + doc.Body
	}
	doc.Header.Set(artifact.KeyStatus, artifact.StatusCompleted)
	doc.Header.Set(artifact.KeyCompleted, artifact.ISOTimestamp(now))
	if err := ctx.Store.WriteFile(archived, []byte(doc.Render())); err != nil {
		return "", s.restore(ctx, archived, planPath, err)
	}

	ctx.Record("Closed and archived plan: " + artifact.DisplayName(name))
	ctx.Logger.Printf("%s: archived %s as %s", skillID, planPath, archived)
	return archived, nil
}

// restore puts a claimed plan back where it was found.
func (s *ClosePlanSkill) restore(ctx *skill.Context, archived, original string, cause error) error {
	_, err := ctx.Store.Move(archived, filepath.Dir(original), filepath.Base(original), artifact.CollisionFail)
	if err != nil {
		ctx.Logger.Printf("%s: could not restore %s: %v", skillID, original, err)
		return fmt.Errorf("%s: close %s: %w (plan left at %s)", skillID, filepath.Base(original), cause, archived)
	}
	return fmt.Errorf("%s: close %s: %w", skillID, filepath.Base(original), cause)
}

func (s *ClosePlanSkill) readyOnly(ctx *skill.Context, plans []string) []string {
	ready := plans[:0:0]
	for _, plan := range plans {
		doc, err := ctx.Store.ReadDocument(plan)
		if err != nil {
			ctx.Logger.Printf("%s: skip %s: %v", skillID, plan, err)
			continue
		}
		if Ready(doc) {
			ready = append(ready, plan)
		}
	}
	return ready
}

// Ready reports whether a plan has no unchecked checklist item.
func Ready(doc artifact.Document) bool {
	for _, line := range strings.Split(doc.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- [ ]") || strings.HasPrefix(trimmed, "* [ ]") {
			return false
		}
	}
	return true
}

func reportFailure(ctx *skill.Context, plan string, err error) {
	name := filepath.Base(plan)
	switch {
	case errors.Is(err, artifact.ErrPermission):
		ctx.Out.Failure("Permission denied when processing %s", name)
	case errors.Is(err, artifact.ErrNotFound):
		ctx.Out.Failure("Plan %s disappeared before it could be closed", name)
	default:
		ctx.Out.Failure("Error processing %s: %v", name, err)
	}
	ctx.Logger.Printf("%s: %s: %v", skillID, name, err)
}
