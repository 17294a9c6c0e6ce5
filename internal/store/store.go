// Package store provides the medicine storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

// ErrNotFound is returned when a medicine does not exist.
var ErrNotFound = errors.New("medicine not found")

// ListParams holds parameters for listing medicines.
type ListParams struct {
	Query string // name substring
	Limit int    // 0 means no limit
}

// NotificationParams holds parameters for listing notification history.
type NotificationParams struct {
	MedicineID int64 // 0 means all
	Limit      int
}

// Store defines the medicine storage interface.
type Store interface {
	// Insert stores a new medicine and returns it with its assigned ID.
	Insert(ctx context.Context, m model.Medicine) (*model.Medicine, error)

	// Update replaces the medicine with the same ID, inserting it if missing.
	Update(ctx context.Context, m model.Medicine) (*model.Medicine, error)

	// Get retrieves a medicine by ID.
	Get(ctx context.Context, id int64) (*model.Medicine, error)

	// List lists medicines, newest first.
	List(ctx context.Context, p ListParams) ([]model.Medicine, error)

	// Delete removes a medicine.
	Delete(ctx context.Context, id int64) error

	// Watch streams the full medicine list, newest first, after every change.
	Watch(ctx context.Context) <-chan []model.Medicine

	// Close closes the store.
	Close() error
}

// JobQueue persists deferred reminder jobs keyed by slot.
type JobQueue interface {
	// Schedule stores job, replacing any job with the same key.
	Schedule(ctx context.Context, job model.Job) error

	// Reschedule moves a pending job from fireAt to next, reporting false
	// if it was cancelled or replaced in the meantime.
	Reschedule(ctx context.Context, key string, fireAt, next int64) (bool, error)

	// Cancel removes the job with key. Missing keys are not an error.
	Cancel(ctx context.Context, key string) error

	// CancelMedicine removes every job of a medicine.
	CancelMedicine(ctx context.Context, medicineID int64) (int, error)

	// Due returns jobs whose fire time is at or before now, earliest first.
	Due(ctx context.Context, now time.Time) ([]model.Job, error)

	// Jobs lists all pending jobs of a medicine ordered by slot.
	Jobs(ctx context.Context, medicineID int64) ([]model.Job, error)
}
