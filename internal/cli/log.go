package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/skills"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <message...>",
		Short: "Append an entry to the Dashboard activity log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkill(cmd, skills.UpdateActivity, nil, args)
		},
	}
}
