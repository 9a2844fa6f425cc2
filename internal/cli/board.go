package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/tui"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive status board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.Run(s.sctx)
		},
	}
}
