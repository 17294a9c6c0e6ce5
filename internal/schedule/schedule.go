// Package schedule registers deferred reminder jobs for medicines and fires
// them, re-registering each slot for the following day.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

// Queue is the deferred-job system the scheduler registers with.
type Queue interface {
	Schedule(ctx context.Context, job model.Job) error
	Reschedule(ctx context.Context, key string, fireAt, next int64) (bool, error)
	Cancel(ctx context.Context, key string) error
	CancelMedicine(ctx context.Context, medicineID int64) (int, error)
	Due(ctx context.Context, now time.Time) ([]model.Job, error)
}

// Key identifies the job of one reminder slot of a medicine.
func Key(medicineID int64, index int) string {
	return fmt.Sprintf("medicine_%d_reminder_%d", medicineID, index)
}

// NextFire returns the next instant at the reminder's time of day strictly
// after now, in now's location.
func NextFire(reminder string, now time.Time) (time.Time, error) {
	hour, minute, err := model.ParseClock(reminder)
	if err != nil {
		return time.Time{}, err
	}
	return nextAt(hour, minute, now), nil
}

func nextAt(hour, minute int, now time.Time) time.Time {
	y, mo, d := now.Date()
	at := time.Date(y, mo, d, hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, mo, d+1, hour, minute, 0, 0, now.Location())
	}
	return at
}

// Scheduler maps medicines to per-slot jobs.
type Scheduler struct {
	queue  Queue
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Scheduler or Runner.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   *slog.Logger
	interval time.Duration
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPollInterval sets how often a Runner checks for due jobs.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		logger:   slog.Default(),
		interval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewScheduler creates a Scheduler on queue.
func NewScheduler(queue Queue, opts ...Option) *Scheduler {
	o := buildOptions(opts)
	return &Scheduler{queue: queue, now: o.now, logger: o.logger}
}

// ScheduleAll registers one job per reminder slot of m, replacing any job
// already registered for the same slot. Malformed reminders are skipped.
func (s *Scheduler) ScheduleAll(ctx context.Context, m model.Medicine) error {
	now := s.now()
	for i, r := range m.Reminders {
		at, err := NextFire(r, now)
		if err != nil {
			s.logger.WarnContext(ctx, "skip reminder",
				slog.Int64("medicine_id", m.ID), slog.Int("slot", i), slog.String("error", err.Error()))
			continue
		}
		job := model.Job{
			Key:          Key(m.ID, i),
			MedicineID:   m.ID,
			Slot:         i,
			Reminder:     r,
			MedicineName: m.Name,
			FireAt:       at.UnixMilli(),
		}
		if err := s.queue.Schedule(ctx, job); err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "scheduled reminder",
			slog.String("key", job.Key), slog.Time("fire_at", at))
	}
	return nil
}

// CancelAll cancels the jobs of m's current reminder slots, then removes any
// job left for m by slots that no longer exist.
func (s *Scheduler) CancelAll(ctx context.Context, m model.Medicine) error {
	for i := range m.Reminders {
		if err := s.queue.Cancel(ctx, Key(m.ID, i)); err != nil {
			return err
		}
	}
	n, err := s.queue.CancelMedicine(ctx, m.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "cancelled stale reminder slots",
			slog.Int64("medicine_id", m.ID), slog.Int("count", n))
	}
	return nil
}
