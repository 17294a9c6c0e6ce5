// Package notify surfaces medication reminders to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/med-reminder/internal/model"
)

const (
	// Body is the fixed message of every reminder.
	Body = "Time for your medication"

	// ActionOpenApp opens the application's main entry point when the
	// notification is tapped.
	ActionOpenApp = "open_app"
)

// Notifier delivers a notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(ctx context.Context, n model.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n model.Notification) error {
	return f(ctx, n)
}

// ForJob builds the notification shown when job fires at firedAt.
func ForJob(job model.Job, firedAt time.Time) model.Notification {
	return model.Notification{
		MedicineID: job.MedicineID,
		Slot:       job.Slot,
		Title:      "Medication Reminder: " + job.MedicineName,
		Body:       Body,
		Action:     ActionOpenApp,
		FiredAt:    firedAt,
	}
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, n model.Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		slog.Int64("medicine_id", n.MedicineID),
		slog.Int("slot", n.Slot),
		slog.String("title", n.Title),
		slog.String("body", n.Body),
		slog.String("action", n.Action),
	)
	return nil
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal renders notifications as a bordered box on W.
type Terminal struct {
	W io.Writer
}

func (t Terminal) Notify(_ context.Context, n model.Notification) error {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(n.Title),
		n.Body,
		timeStyle.Render(n.FiredAt.Local().Format("Mon 02 Jan 15:04")),
	)
	_, err := fmt.Fprintln(t.W, boxStyle.Render(content))
	return err
}

// Recorder stores notifications in history.
type Recorder interface {
	RecordNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
}

// History records each notification through Recorder.
type History struct {
	Recorder Recorder
}

func (h History) Notify(ctx context.Context, n model.Notification) error {
	_, err := h.Recorder.RecordNotification(ctx, n)
	return err
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
