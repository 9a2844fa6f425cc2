package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/skills"
	"github.com/kingrea/taskflow/internal/skills/close_plan"
)

func newCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close [Plan_x.md...]",
		Short: "Mark plans completed and archive them",
		Long: `Mark each named plan completed and move it to Archive/. Without a name every
plan in Plans/ and the project root is closed; --ready limits that to plans
whose checklist is fully ticked.`,
		RunE: runClose,
	}
	cmd.Flags().Bool("ready", false, "Only close plans with no unchecked steps")
	return cmd
}

func runClose(cmd *cobra.Command, args []string) error {
	ready, _ := cmd.Flags().GetBool("ready")
	return runSkill(cmd, skills.ClosePlan, skill.Config{close_plan.OptionOnlyReady: ready}, args)
}
