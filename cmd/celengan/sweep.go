package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire pending entries that waited too long",
		Long: `Expire unconfirmed entries whose confirmation window has passed.

Pending entries also expire lazily on the next message, so the sweep only
matters for sessions that went quiet. Without --once the sweep keeps running
on the sweep.schedule cron expression until interrupted.`,
		RunE: runSweep,
	}

	cmd.Flags().Bool("once", false, "sweep once and exit")
	cmd.Flags().String("schedule", "", "cron schedule (default: sweep.schedule from config)")

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	once, _ := cmd.Flags().GetBool("once")
	schedule, _ := cmd.Flags().GetString("schedule")

	return withApp(cmd, func(a *app) error {
		ctx := cmd.Context()

		if once {
			n, err := a.engine.SweepExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d pending entries\n", n)
			return nil
		}

		if schedule == "" {
			schedule = a.cfg.Sweep.Schedule
		}
		return runSweepSchedule(ctx, schedule, func() {
			if _, err := a.engine.SweepExpired(ctx); err != nil {
				slog.Error("Sweep failed", "error", err)
			}
		})
	})
}

// runSweepSchedule runs sweep on schedule until ctx is canceled and waits
// for a sweep in flight to finish.
func runSweepSchedule(ctx context.Context, schedule string, sweep func()) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("Sweep scheduler started", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Sweep scheduler stopped")
	return nil
}
