package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/taskflow/internal/orchestrator"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the watcher and the looping orchestrator together",
		Long: `Run the Inbox/ watcher and an orchestrator loop in one process. Both stop on
SIGINT or SIGTERM; if either fails the other is stopped as well.`,
		Args: cobra.NoArgs,
		RunE: runAll,
	}
}

func runAll(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signalContext(cmd)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return newWatcher(s).Run(ctx)
	})
	g.Go(func() error {
		return orchestrator.New(s.sctx).RunLoop(ctx, s.cfg.SweepInterval())
	})
	return g.Wait()
}
