package create_plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/taskflow/internal/artifact"
	"github.com/kingrea/taskflow/internal/skill"
)

const (
	skillID      = "create-plan"
	skillVersion = "1.0.0"
)

// CreatePlanSkill writes a checklist plan for each pending task record.
type CreatePlanSkill struct {
	*skill.Base
}

// Register installs the skill factory into the registry.
func Register(reg *skill.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(skillID, func(skill.Config) (skill.Skill, error) {
		return New(), nil
	})
}

// New constructs the planner.
func New() *CreatePlanSkill {
	base := skill.NewBase(skill.Info{
		ID:          skillID,
		Name:        "Create Plan",
		Description: "Writes a Plan_<task>.md checklist for each task in Needs_Action/ and moves the task to Done/.",
		Version:     skillVersion,
	})
	return &CreatePlanSkill{Base: &base}
}

// Run plans the named task records, or every pending one when args is empty.
func (s *CreatePlanSkill) Run(ctx *skill.Context, args []string) (skill.Result, error) {
	if err := ctx.Validate(skillID); err != nil {
		return skill.Result{Status: skill.StatusFailed}, err
	}
	layout := ctx.Store.Layout()
	var tasks []string
	failed := 0
	if len(args) == 0 {
		listed, err := ctx.Store.ListTasks()
		if err != nil {
			return skill.Result{Status: skill.StatusFailed}, fmt.Errorf("%s: list tasks: %w", skillID, err)
		}
		tasks = listed
	} else {
		for _, name := range args {
			path, err := ctx.Store.Resolve(name, layout.NeedsAction)
			if err != nil {
				ctx.Out.Failure("Task %s not found in Needs_Action/ or the project root", name)
				failed++
				continue
			}
			tasks = append(tasks, path)
		}
	}
	if len(tasks) == 0 && failed == 0 {
		ctx.Out.Info("No pending tasks in Needs_Action/.")
		return skill.Summarize(0, 0, "no pending tasks"), nil
	}

	processed := 0
	for _, task := range tasks {
		ctx.Out.Info("Processing: %s", filepath.Base(task))
		planPath, err := s.Plan(ctx, task)
		if err != nil {
			reportFailure(ctx, task, err)
			failed++
			continue
		}
		ctx.Out.Success("Created plan: %s", filepath.Base(planPath))
		processed++
	}
	ctx.Out.Summary("Processed", processed, processed+failed, "task")
	return skill.Summarize(processed, failed, fmt.Sprintf("planned %d of %d tasks", processed, processed+failed)), nil
}

// Plan writes the plan for one task record and returns its path.
func (s *CreatePlanSkill) Plan(ctx *skill.Context, taskPath string) (string, error) {
	if err := ctx.Validate(skillID); err != nil {
		return "", err
	}
	layout := ctx.Store.Layout()
	taskName := filepath.Base(taskPath)

	claimed, err := ctx.Store.Move(taskPath, layout.Done, "", artifact.CollisionNumericSuffix)
	if err != nil {
		return "", fmt.Errorf("%s: claim %s: %w", skillID, taskName, err)
	}
	ctx.Logger.Printf("%s: claimed %s as %s", skillID, taskName, claimed)

	doc, err := ctx.Store.ReadDocument(claimed)
	if err != nil {
		return "", s.release(ctx, claimed, taskName, err)
	}
	meta := artifact.TaskMetaFrom(doc.Header)
	planPath := filepath.Join(ctx.Store.PlanDir(), artifact.PlanNameFor(taskName))
	header := artifact.PlanMeta{
		TaskOrigin: taskName,
		Created:    artifact.ISOTimestamp(ctx.Clock()),
		Status:     artifact.StatusPending,
	}.Header()
	content := artifact.Render(header, planBody(taskName, meta, ctx.Config.PlanSteps()))
	if err := ctx.Store.WriteFile(planPath, []byte(content)); err != nil {
		return "", s.release(ctx, claimed, taskName, err)
	}

	if meta.Type == artifact.TypeFileDrop {
		s.moveAttachment(ctx, taskPath)
	}
	ctx.Record(fmt.Sprintf("Created plan for %s and moved to Done", artifact.DisplayName(taskName)))
	ctx.Logger.Printf("%s: wrote %s", skillID, planPath)
	return planPath, nil
}

// release hands a claimed task back to Needs_Action after a failed plan write.
func (s *CreatePlanSkill) release(ctx *skill.Context, claimed, taskName string, cause error) error {
	layout := ctx.Store.Layout()
	if _, err := ctx.Store.Move(claimed, layout.NeedsAction, taskName, artifact.CollisionFail); err != nil {
		ctx.Logger.Printf("%s: could not return %s to Needs_Action: %v", skillID, claimed, err)
		return fmt.Errorf("%s: plan %s: %w (task left at %s)", skillID, taskName, cause, claimed)
	}
	return fmt.Errorf("%s: plan %s: %w", skillID, taskName, cause)
}

func (s *CreatePlanSkill) moveAttachment(ctx *skill.Context, taskPath string) {
	raw := strings.TrimSuffix(taskPath, artifact.MarkdownExt)
	if raw == taskPath {
		return
	}
	if _, err := os.Stat(raw); err != nil {
		return
	}
	if _, err := ctx.Store.Move(raw, ctx.Store.Layout().Done, "", artifact.CollisionNumericSuffix); err != nil {
		ctx.Logger.Printf("%s: move attachment %s: %v", skillID, raw, err)
	}
}

func planBody(taskName string, meta artifact.TaskMeta, steps []string) string {
	var b strings.Builder
	b.WriteString("\n# Plan for ")
	b.WriteString(artifact.DisplayName(taskName))
	b.WriteString("\n\n")
	if meta.Type == artifact.TypeFileDrop && meta.OriginalName != "" {
		fmt.Fprintf(&b, "Original: %s\n\n", meta.OriginalName)
	}
	for _, step := range steps {
		b.WriteString("- [ ] ")
		b.WriteString(step)
		b.WriteString("\n")
	}
	return b.String()
}

func reportFailure(ctx *skill.Context, task string, err error) {
	name := filepath.Base(task)
	switch {
	case errors.Is(err, artifact.ErrPermission):
		ctx.Out.Failure("Permission denied when processing %s", name)
	case errors.Is(err, artifact.ErrNotFound):
		ctx.Out.Failure("Task %s disappeared before it could be planned", name)
	default:
		ctx.Out.Failure("Error processing %s: %v", name, err)
	}
	ctx.Logger.Printf("%s: %s: %v", skillID, name, err)
}
