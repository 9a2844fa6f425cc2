// Package update_activity appends a free-form line to the activity log.
package update_activity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/taskflow/internal/logbook"
	"github.com/kingrea/taskflow/internal/skill"
)

const (
	skillID      = "update-activity"
	skillVersion = "1.0.0"
)

// ErrEmptyMessage is returned when no message text was supplied.
var ErrEmptyMessage = errors.New("update-activity: message is required")

// UpdateActivitySkill writes one activity log entry.
type UpdateActivitySkill struct {
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

// New constructs the skill.
func New() *UpdateActivitySkill {
	base := skill.NewBase(skill.Info{
		ID:          skillID,
		Name:        "Update Activity",
		Description: "Appends a timestamped entry under ## Recent Activity in Dashboard.md.",
		Version:     skillVersion,
	})
	return &UpdateActivitySkill{Base: &base}
}

// Run joins args into one message and appends it.
func (s *UpdateActivitySkill) Run(ctx *skill.Context, args []string) (skill.Result, error) {
	if err := ctx.Validate(skillID); err != nil {
		return skill.Result{Status: skill.StatusFailed}, err
	}
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return skill.Result{Status: skill.StatusFailed}, ErrEmptyMessage
	}
	if err := ctx.Logbook.Append(message); err != nil {
		switch {
		case errors.Is(err, logbook.ErrMissingLog):
			ctx.Out.Failure("%s not found", ctx.Logbook.Path())
		case errors.Is(err, logbook.ErrMissingSection):
			ctx.Out.Failure("%s lacks a %q section", ctx.Logbook.Path(), logbook.SectionMarker)
		default:
			ctx.Out.Failure("Could not update activity log: %v", err)
		}
		ctx.Logger.Printf("%s: %v", skillID, err)
		return skill.Summarize(0, 1, err.Error()), nil
	}
	ctx.Out.Success("Activity logged: %s", message)
	return skill.Summarize(1, 0, fmt.Sprintf("logged %q", message)), nil
}
