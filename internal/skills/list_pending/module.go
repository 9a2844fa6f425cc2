// Package list_pending prints the tasks waiting in Needs_Action/ and the plans
// in Plans/ and the project root, with each plan's header status.
package list_pending

import (
	"fmt"

	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/workflow"
)

const (
	skillID      = "list-pending"
	skillVersion = "1.0.0"
)

// ListPendingSkill reports in-flight records without changing them.
type ListPendingSkill struct {
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

// New constructs the listing skill.
func New() *ListPendingSkill {
	base := skill.NewBase(skill.Info{
		ID:          skillID,
		Name:        "List Pending",
		Description: "Lists tasks in Needs_Action/ and plans in Plans/ and the project root.",
		Version:     skillVersion,
	})
	return &ListPendingSkill{Base: &base}
}

// Run prints the listing. args are ignored.
func (s *ListPendingSkill) Run(ctx *skill.Context, _ []string) (skill.Result, error) {
	if err := ctx.Validate(skillID); err != nil {
		return skill.Result{Status: skill.StatusFailed}, err
	}
	snap, err := workflow.Detect(ctx.Store)
	if err != nil {
		return skill.Result{Status: skill.StatusFailed}, fmt.Errorf("%s: %w", skillID, err)
	}
	out := ctx.Out

	out.Heading("Pending Tasks in Needs_Action/")
	if len(snap.Tasks) == 0 {
		out.Muted("No pending tasks in Needs_Action/ folder.")
	}
	for _, task := range snap.Tasks {
		out.Plain("- %s", task.Name)
	}
	out.Plain("")

	out.Heading("Pending Plans")
	if len(snap.Plans) == 0 {
		out.Muted("No pending plans found.")
	}
	for _, plan := range snap.Plans {
		switch {
		case plan.Unreadable:
			out.Plain("- %s (could not read status)", plan.Name)
		case plan.Status != "":
			out.Plain("- %s (status: %s)", plan.Name, plan.Status)
		default:
			out.Plain("- %s", plan.Name)
		}
	}
	out.Plain("")

	out.Heading("Summary")
	out.Plain("- Tasks in Needs_Action/: %d", len(snap.Tasks))
	out.Plain("- Plans in system: %d", len(snap.Plans))

	return skill.Result{
		Status:  skill.StatusCompleted,
		Message: fmt.Sprintf("%d tasks, %d plans (%d open)", len(snap.Tasks), len(snap.Plans), snap.Open()),
	}, nil
}
