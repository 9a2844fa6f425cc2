package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Turn files dropped into Inbox/ into task records",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, stop := signalContext(cmd)
	defer stop()
	return newWatcher(s).Run(ctx)
}

func newWatcher(s *session) *watcher.Watcher {
	return watcher.New(s.cfg, s.sctx.Store,
		watcher.WithOutput(s.sctx.Out),
		watcher.WithLogger(s.logger),
	)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
