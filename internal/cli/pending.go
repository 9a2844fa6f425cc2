package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/skills"
)

func newPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending tasks and plans with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkill(cmd, skills.ListPending, nil, nil)
		},
	}
}
