// Package model defines the core medicine data types.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ReminderSeparator joins reminder times in the stored reminders column.
const ReminderSeparator = ","

// TimeLayout is the storage format of a reminder time.
const TimeLayout = "15:04"

// displayLayout is the 12-hour format shown to the user.
const displayLayout = "03:04 PM"

// Medicine represents a stored medicine entry.
type Medicine struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Dosage       int      `json:"dosage"`
	Reminders    []string `json:"reminders"`
	RefillDays   int      `json:"refill_days"`
	LastRefillAt int64    `json:"last_refill_at"` // ms since epoch
	Notes        string   `json:"notes,omitempty"`
	CreatedAt    int64    `json:"created_at"` // ms since epoch
}

// DosageKind is the dosage choice made while drafting a medicine.
type DosageKind int

const (
	DosageUnset DosageKind = iota
	DosageOnceDaily
	DosageTwiceDaily
	DosageCustom
)

func (k DosageKind) String() string {
	switch k {
	case DosageOnceDaily:
		return "once"
	case DosageTwiceDaily:
		return "twice"
	case DosageCustom:
		return "custom"
	default:
		return "none"
	}
}

// ParseDosageKind maps the CLI names (none, once, twice, custom) to a kind.
func ParseDosageKind(s string) (DosageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DosageUnset, nil
	case "once":
		return DosageOnceDaily, nil
	case "twice":
		return DosageTwiceDaily, nil
	case "custom":
		return DosageCustom, nil
	}
	return DosageUnset, fmt.Errorf("invalid dosage %q (valid: none, once, twice, custom)", s)
}

// JoinReminders encodes a reminder list into its stored form.
func JoinReminders(reminders []string) string {
	return strings.Join(reminders, ReminderSeparator)
}

// SplitReminders decodes the stored reminders column. Blank entries, such as
// those produced by leading or trailing separators, are dropped.
func SplitReminders(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ReminderSeparator) {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// ParseClock parses an "HH:mm" reminder into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatClock formats hour and minute as a zero-padded 24-hour "HH:mm".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// DisplayTime renders a stored reminder in 12-hour form. Unparseable input is
// returned unchanged.
func DisplayTime(s string) string {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format(displayLayout)
}

// MillisToTime converts a ms-since-epoch value to a time.Time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// Job is a deferred one-shot reminder for one slot of a medicine.
type Job struct {
	Key          string `json:"key"`
	MedicineID   int64  `json:"medicine_id"`
	Slot         int    `json:"slot"`
	Reminder     string `json:"reminder"`
	MedicineName string `json:"medicine_name"`
	FireAt       int64  `json:"fire_at"` // ms since epoch
}

// Notification is a reminder surfaced to the user.
type Notification struct {
	ID         string    `json:"id"`
	MedicineID int64     `json:"medicine_id"`
	Slot       int       `json:"slot"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Action     string    `json:"action"`
	FiredAt    time.Time `json:"fired_at"`
}
