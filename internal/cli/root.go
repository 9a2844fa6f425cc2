package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrFailed is returned when a command already reported failed records on
// its output. It maps to exit status 1 without an extra error line.
var ErrFailed = errors.New("one or more records failed")

// NewRootCmd builds the taskflow command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "taskflow - file-based task pipeline",
		Long: `taskflow turns files dropped into Inbox/ into task records, plans for them,
and archives the plans once they are done.

Every stage is a plain markdown file in the project directory, so the state on
disk is the whole state of the pipeline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().String("root", "", "Project directory (default $TASKFLOW_ROOT, then the working directory)")

	root.AddCommand(newInitCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newCloseCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newPendingCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newSkillsCmd())
	return root
}

// Execute runs the root command
func Execute(version string) error {
	err := NewRootCmd(version).Execute()
	if err != nil && !errors.Is(err, ErrFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
