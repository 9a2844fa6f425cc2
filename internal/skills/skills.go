// Package skills registers the built-in pipeline skills.
package skills

import (
	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/skills/close_plan"
	"github.com/kingrea/taskflow/internal/skills/create_plan"
	"github.com/kingrea/taskflow/internal/skills/list_pending"
	"github.com/kingrea/taskflow/internal/skills/update_activity"
)

// Skill identifiers used by the CLI and orchestrator.
const (
	CreatePlan     = "create-plan"
	ClosePlan      = "close-plan"
	ListPending    = "list-pending"
	UpdateActivity = "update-activity"
)

// RegisterBuiltins installs all of the built-in skill factories into the
// provided registry.
func RegisterBuiltins(reg *skill.Registry) {
	if reg == nil {
		return
	}
	create_plan.Register(reg)
	close_plan.Register(reg)
	list_pending.Register(reg)
	update_activity.Register(reg)
}

// NewRegistry returns a registry holding the built-ins.
func NewRegistry() *skill.Registry {
	reg := skill.NewRegistry()
	RegisterBuiltins(reg)
	return reg
}
