package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

// Schedule stores job, replacing any pending job with the same key.
func (s *SQLiteStore) Schedule(ctx context.Context, job model.Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (key, medicine_id, slot, reminder, medicine_name, fire_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   medicine_id = excluded.medicine_id,
		   slot = excluded.slot,
		   reminder = excluded.reminder,
		   medicine_name = excluded.medicine_name,
		   fire_at = excluded.fire_at,
		   updated_at = excluded.updated_at`,
		job.Key, job.MedicineID, job.Slot, job.Reminder, job.MedicineName, job.FireAt, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Key, err)
	}
	return nil
}

// Reschedule moves the job with key from fireAt to next. It reports false
// when the job is gone or was replaced since it was read, leaving the queue
// untouched.
func (s *SQLiteStore) Reschedule(ctx context.Context, key string, fireAt, next int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET fire_at = ?, updated_at = ? WHERE key = ? AND fire_at = ?`,
		next, time.Now().UnixMilli(), key, fireAt)
	if err != nil {
		return false, fmt.Errorf("reschedule job %s: %w", key, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Cancel removes the job with key.
func (s *SQLiteStore) Cancel(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cancel job %s: %w", key, err)
	}
	return nil
}

// CancelMedicine removes every job of a medicine and returns how many went.
func (s *SQLiteStore) CancelMedicine(ctx context.Context, medicineID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE medicine_id = ?`, medicineID)
	if err != nil {
		return 0, fmt.Errorf("cancel jobs of medicine %d: %w", medicineID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// PruneOrphanJobs removes jobs whose medicine no longer exists and returns
// how many went.
func (s *SQLiteStore) PruneOrphanJobs(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE medicine_id NOT IN (SELECT id FROM medicines)`)
	if err != nil {
		return 0, fmt.Errorf("prune orphan jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Due returns jobs whose fire time is at or before now, earliest first.
func (s *SQLiteStore) Due(ctx context.Context, now time.Time) ([]model.Job, error) {
	return s.queryJobs(ctx,
		`SELECT key, medicine_id, slot, reminder, medicine_name, fire_at
		 FROM jobs WHERE fire_at <= ? ORDER BY fire_at, key`, now.UnixMilli())
}

// Jobs lists the pending jobs of a medicine ordered by slot.
func (s *SQLiteStore) Jobs(ctx context.Context, medicineID int64) ([]model.Job, error) {
	return s.queryJobs(ctx,
		`SELECT key, medicine_id, slot, reminder, medicine_name, fire_at
		 FROM jobs WHERE medicine_id = ? ORDER BY slot`, medicineID)
}

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...interface{}) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(&j.Key, &j.MedicineID, &j.Slot, &j.Reminder, &j.MedicineName, &j.FireAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
