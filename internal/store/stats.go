package store

import (
	"context"
	"os"

	"github.com/rcliao/med-reminder/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string `json:"db_path"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	Medicines     int    `json:"medicines"`
	ReminderSlots int    `json:"reminder_slots"`
	PendingJobs   int    `json:"pending_jobs"`
	OrphanJobs    int    `json:"orphan_jobs"`
	Notifications int    `json:"notifications"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medicines`).Scan(&st.Medicines); err != nil {
		return st, err
	}
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&st.PendingJobs)
	s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE medicine_id NOT IN (SELECT id FROM medicines)`).Scan(&st.OrphanJobs)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&st.Notifications)

	rows, err := s.db.QueryContext(ctx, `SELECT reminders FROM medicines`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var reminders string
		if err := rows.Scan(&reminders); err != nil {
			return st, err
		}
		st.ReminderSlots += len(model.SplitReminders(reminders))
	}

	return st, rows.Err()
}
