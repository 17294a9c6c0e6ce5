package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
	"github.com/rcliao/med-reminder/internal/notify"
)

// Runner fires due jobs and re-registers each for the next day.
type Runner struct {
	queue    Queue
	notifier notify.Notifier
	now      func() time.Time
	logger   *slog.Logger
	interval time.Duration
}

// NewRunner creates a Runner that delivers through notifier.
func NewRunner(queue Queue, notifier notify.Notifier, opts ...Option) *Runner {
	o := buildOptions(opts)
	return &Runner{
		queue:    queue,
		notifier: notifier,
		now:      o.now,
		logger:   o.logger,
		interval: o.interval,
	}
}

// Run polls for due jobs until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "reminder runner started", slog.Duration("poll_interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Tick(ctx, r.now()); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "reminder tick failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "reminder runner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick fires every job due at now and returns how many fired. A job that
// cannot be re-registered does not stop the rest; its error is returned
// alongside the count.
func (r *Runner) Tick(ctx context.Context, now time.Time) (int, error) {
	jobs, err := r.queue.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, job := range jobs {
		if err := r.fire(ctx, job, now); err != nil {
			errs = append(errs, err)
		}
	}
	return len(jobs), errors.Join(errs...)
}

// fire surfaces the notification for job and re-registers it under the same
// key for the same time on the following day.
func (r *Runner) fire(ctx context.Context, job model.Job, now time.Time) error {
	attrs := []any{
		slog.String("key", job.Key),
		slog.Int64("medicine_id", job.MedicineID),
		slog.Int("slot", job.Slot),
	}

	if err := r.notifier.Notify(ctx, notify.ForJob(job, now)); err != nil {
		r.logger.WarnContext(ctx, "notification failed", append(attrs, slog.String("error", err.Error()))...)
	}

	next, err := NextFire(job.Reminder, now)
	if err != nil {
		// Nothing to reschedule to; drop the job rather than fire it forever.
		r.logger.WarnContext(ctx, "drop malformed job", append(attrs, slog.String("error", err.Error()))...)
		return r.queue.Cancel(ctx, job.Key)
	}

	// Only move the job still on record; one cancelled mid-tick stays gone.
	moved, err := r.queue.Reschedule(ctx, job.Key, job.FireAt, next.UnixMilli())
	if err != nil {
		return err
	}
	if !moved {
		r.logger.InfoContext(ctx, "reminder cancelled while firing", attrs...)
		return nil
	}
	r.logger.InfoContext(ctx, "reminder fired", append(attrs, slog.Time("next_fire_at", next))...)
	return nil
}
