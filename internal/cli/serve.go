package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/med-reminder/internal/notify"
	"github.com/rcliao/med-reminder/internal/schedule"
	"github.com/rcliao/med-reminder/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Fire reminders",
		Long:  "Run in the foreground, firing due reminders and rescheduling each for the next day.",
		Run:   runServe,
	}

	cmd.Flags().Bool("quiet", false, "Do not print reminders to the terminal (log and history only)")
	cmd.Flags().Bool("reschedule", false, "Reschedule every medicine's reminders from now before starting")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	quiet, _ := cmd.Flags().GetBool("quiet")
	reschedule, _ := cmd.Flags().GetBool("reschedule")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	now := clock()
	ctx := cmd.Context()

	if reschedule {
		if err := rescheduleAll(ctx, s, schedule.NewScheduler(s, schedule.WithClock(now), schedule.WithLogger(logger))); err != nil {
			exitErr("reschedule", err)
		}
	}

	notifiers := notify.Multi{notify.Log{Logger: logger}, notify.History{Recorder: s}}
	if !quiet {
		notifiers = append(notifiers, notify.Terminal{W: os.Stdout})
	}

	runner := schedule.NewRunner(s, notifiers,
		schedule.WithClock(now),
		schedule.WithLogger(logger),
		schedule.WithPollInterval(cfg.PollInterval),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx)
	})
	g.Go(func() error {
		for medicines := range s.Watch(ctx) {
			logger.InfoContext(ctx, "medicines loaded", slog.Int("count", len(medicines)))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		exitErr("serve", err)
	}
}

func rescheduleAll(ctx context.Context, s *store.SQLiteStore, sched *schedule.Scheduler) error {
	medicines, err := s.List(ctx, store.ListParams{})
	if err != nil {
		return err
	}
	for _, m := range medicines {
		if err := sched.CancelAll(ctx, m); err != nil {
			return err
		}
		if err := sched.ScheduleAll(ctx, m); err != nil {
			return err
		}
	}
	logger.InfoContext(ctx, "rescheduled reminders", slog.Int("medicines", len(medicines)))
	return nil
}
