package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/logging"
	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/skills"
)

// session holds the dependencies shared by every command that touches a
// project.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	sctx   *skill.Context
}

func openSession(cmd *cobra.Command) (*session, error) {
	flag, _ := cmd.Flags().GetString("root")
	root, err := config.ResolveRoot(flag)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	sctx, err := skill.NewContext(cfg, logger, console.New(cmd.OutOrStdout()))
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, sctx: sctx}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}

// runSkill resolves a built-in skill and runs it once.
func runSkill(cmd *cobra.Command, id string, opts skill.Config, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	sk, err := skills.NewRegistry().Resolve(id, opts)
	if err != nil {
		return err
	}
	result, err := sk.Run(s.sctx, args)
	if err != nil {
		return err
	}
	s.logger.Printf("%s: %s (%d processed, %d failed)", id, result.Status, result.Processed, result.Failed)
	if !result.OK() {
		return ErrFailed
	}
	return nil
}
