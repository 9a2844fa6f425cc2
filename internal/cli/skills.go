package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/skills"
)

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List the registered skills",
		Args:  cobra.NoArgs,
		RunE:  runSkills,
	}
}

func runSkills(cmd *cobra.Command, args []string) error {
	out := console.New(cmd.OutOrStdout())
	reg := skills.NewRegistry()
	out.Heading("Skills")
	for _, id := range reg.IDs() {
		sk, err := reg.Resolve(id, nil)
		if err != nil {
			return err
		}
		info := sk.Info()
		out.Plain("- %s (%s): %s", info.ID, info.Version, info.Description)
	}
	return nil
}
