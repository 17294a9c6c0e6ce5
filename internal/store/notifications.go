package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

// firedAtLayout has a fixed width so fired_at sorts as text.
const firedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordNotification appends n to the notification history. An empty ID is
// filled with a new ULID.
func (s *SQLiteStore) RecordNotification(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if n.FiredAt.IsZero() {
		n.FiredAt = time.Now()
	}
	n.FiredAt = n.FiredAt.UTC()
	if n.ID == "" {
		n.ID = s.newID(n.FiredAt)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, medicine_id, slot, title, body, action, fired_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.MedicineID, n.Slot, n.Title, n.Body, n.Action, n.FiredAt.Format(firedAtLayout))
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &n, nil
}

// Notifications lists the notification history, newest first.
func (s *SQLiteStore) Notifications(ctx context.Context, p NotificationParams) ([]model.Notification, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, medicine_id, slot, title, body, action, fired_at FROM notifications`
	var args []interface{}
	if p.MedicineID != 0 {
		query += ` WHERE medicine_id = ?`
		args = append(args, p.MedicineID)
	}
	query += ` ORDER BY fired_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var firedAt string
		if err := rows.Scan(&n.ID, &n.MedicineID, &n.Slot, &n.Title, &n.Body, &n.Action, &firedAt); err != nil {
			return nil, err
		}
		n.FiredAt, _ = time.Parse(firedAtLayout, firedAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
