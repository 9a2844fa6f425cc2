package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/skills"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [task.md...]",
		Short: "Create plans for pending tasks",
		Long: `Create a plan for each named task, or for every task in Needs_Action/ when
no name is given. Planned tasks move to Done/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkill(cmd, skills.CreatePlan, nil, args)
		},
	}
}
