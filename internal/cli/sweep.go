package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/taskflow/internal/orchestrator"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Plan pending tasks and close finished plans",
		Long: `Run one orchestrator sweep: plan every pending task, then close plans whose
checklist is fully ticked (unless orchestrator.close_ready_plans is false).

With --loop the sweep repeats every --interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
	cmd.Flags().Bool("loop", false, "Keep sweeping until interrupted")
	cmd.Flags().Duration("interval", 0, "Time between sweeps in loop mode (default orchestrator.interval)")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	loop, _ := cmd.Flags().GetBool("loop")
	interval, _ := cmd.Flags().GetDuration("interval")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	orch := orchestrator.New(s.sctx)

	ctx, stop := signalContext(cmd)
	defer stop()
	if loop {
		if interval <= 0 {
			interval = s.cfg.SweepInterval()
		}
		return orch.RunLoop(ctx, interval)
	}
	report, err := orch.Sweep(ctx)
	if err != nil {
		return err
	}
	if !report.OK() {
		return ErrFailed
	}
	return nil
}
