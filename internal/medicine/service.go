// Package medicine implements the add, edit, delete and refill flows on top
// of the store and the reminder scheduler.
package medicine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/med-reminder/internal/draft"
	"github.com/rcliao/med-reminder/internal/model"
	"github.com/rcliao/med-reminder/internal/refill"
	"github.com/rcliao/med-reminder/internal/store"
)

// Reminders registers and cancels the reminder jobs of a medicine.
type Reminders interface {
	ScheduleAll(ctx context.Context, m model.Medicine) error
	CancelAll(ctx context.Context, m model.Medicine) error
}

// Service runs the medicine flows.
type Service struct {
	store     store.Store
	reminders Reminders
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a Service. A nil now uses time.Now and a nil logger
// uses slog.Default.
func NewService(st store.Store, reminders Reminders, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, reminders: reminders, now: now, logger: logger}
}

// Create commits a new draft, stores it and schedules its reminders.
func (s *Service) Create(ctx context.Context, d draft.Draft) (*model.Medicine, error) {
	d.ID, d.CreatedAt, d.LastRefillAt = 0, 0, 0
	m, err := s.store.Insert(ctx, draft.Commit(d, s.now()))
	if err != nil {
		return nil, fmt.Errorf("save medicine: %w", err)
	}
	if err := s.reminders.ScheduleAll(ctx, *m); err != nil {
		return m, fmt.Errorf("schedule reminders: %w", err)
	}
	s.logger.InfoContext(ctx, "medicine created",
		slog.Int64("medicine_id", m.ID), slog.Int("reminders", len(m.Reminders)))
	return m, nil
}

// Edit loads the draft of a stored medicine.
func (s *Service) Edit(ctx context.Context, id int64) (draft.Draft, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return draft.Draft{}, err
	}
	return draft.Load(*m), nil
}

// Update saves d over medicine id, then swaps the old reminders for the new
// ones. A failed save leaves the old reminders in place. Creation and refill
// times are kept.
func (s *Service) Update(ctx context.Context, id int64, d draft.Draft) (*model.Medicine, error) {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d.ID, d.CreatedAt, d.LastRefillAt = old.ID, old.CreatedAt, old.LastRefillAt
	m, err := s.store.Update(ctx, draft.Commit(d, s.now()))
	if err != nil {
		return nil, fmt.Errorf("save medicine: %w", err)
	}
	if err := s.reminders.CancelAll(ctx, *old); err != nil {
		return m, fmt.Errorf("cancel reminders: %w", err)
	}
	if err := s.reminders.ScheduleAll(ctx, *m); err != nil {
		return m, fmt.Errorf("schedule reminders: %w", err)
	}
	s.logger.InfoContext(ctx, "medicine updated",
		slog.Int64("medicine_id", m.ID), slog.Int("reminders", len(m.Reminders)))
	return m, nil
}

// Delete cancels the reminders of medicine id and removes it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reminders.CancelAll(ctx, *m); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "medicine deleted", slog.Int64("medicine_id", id))
	return nil
}

// Refill records that medicine id was refilled now.
func (s *Service) Refill(ctx context.Context, id int64) (*model.Medicine, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Update(ctx, refill.MarkRefilled(*m, s.now()))
	if err != nil {
		return nil, fmt.Errorf("save refill: %w", err)
	}
	return saved, nil
}

// Get returns medicine id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Medicine, error) {
	return s.store.Get(ctx, id)
}

// List returns medicines, newest first.
func (s *Service) List(ctx context.Context, p store.ListParams) ([]model.Medicine, error) {
	return s.store.List(ctx, p)
}
