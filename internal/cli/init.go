package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the pipeline folders in the project directory",
		Long: `Create Inbox/, Needs_Action/, Plans/, Done/, Archive/ and .taskflow/.

Existing files are never overwritten: a present config.yaml or Dashboard.md is
left as it is.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	flag, _ := cmd.Flags().GetString("root")
	root, err := config.ResolveRoot(flag)
	if err != nil {
		return err
	}
	if err := config.InitProjectDir(root); err != nil {
		return err
	}
	console.New(cmd.OutOrStdout()).Success("Initialized taskflow project in %s", root)
	return nil
}
