// Package draft holds the in-progress state of a medicine being added or
// edited, and converts it to and from a stored record.
package draft

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

const (
	MinCustomDosage = 3
	MaxCustomDosage = 10
	MinRefillDays   = 1
	MaxRefillDays   = 365
)

// Draft is the staging state for a medicine. Every operation returns a new
// Draft and leaves the receiver untouched.
type Draft struct {
	Name         string           `json:"name"`
	Kind         model.DosageKind `json:"dosage_kind"`
	CustomDosage int              `json:"custom_dosage"`
	Reminders    []string         `json:"reminders"`
	RefillDays   int              `json:"refill_days"`
	Notes        string           `json:"notes"`

	// Identity of the record being edited. Zero for a new medicine.
	ID           int64 `json:"id,omitempty"`
	CreatedAt    int64 `json:"created_at,omitempty"`
	LastRefillAt int64 `json:"last_refill_at,omitempty"`
}

// New returns an empty draft for the add flow.
func New() Draft {
	return Draft{}
}

// SetName replaces the name verbatim.
func (d Draft) SetName(name string) Draft {
	d.Name = name
	return d
}

// SetDosageKind replaces the dosage kind. Existing reminders are kept even
// when they now exceed the daily dosage.
func (d Draft) SetDosageKind(kind model.DosageKind) Draft {
	d.Kind = kind
	return d
}

// SetCustomDosage stores n clamped to [MinCustomDosage, MaxCustomDosage].
func (d Draft) SetCustomDosage(n int) Draft {
	d.CustomDosage = min(max(n, MinCustomDosage), MaxCustomDosage)
	return d
}

// AddReminder appends hour:minute as "HH:mm". Duplicates and impossible
// clock times are ignored.
func (d Draft) AddReminder(hour, minute int) Draft {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return d
	}
	t := model.FormatClock(hour, minute)
	if slices.Contains(d.Reminders, t) {
		return d
	}
	d.Reminders = append(slices.Clone(d.Reminders), t)
	return d
}

// RemoveReminder drops the reminder at index. Out of range is a no-op.
func (d Draft) RemoveReminder(index int) Draft {
	if index < 0 || index >= len(d.Reminders) {
		return d
	}
	d.Reminders = slices.Delete(slices.Clone(d.Reminders), index, index+1)
	return d
}

// SetRefillDays parses text as the refill interval. Anything that is not an
// integer in [MinRefillDays, MaxRefillDays] stores 0.
func (d Draft) SetRefillDays(text string) Draft {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < MinRefillDays || n > MaxRefillDays {
		n = 0
	}
	d.RefillDays = n
	return d
}

// SetNotes replaces the notes verbatim.
func (d Draft) SetNotes(notes string) Draft {
	d.Notes = notes
	return d
}

// DailyDosage is the dose count implied by the dosage kind.
func (d Draft) DailyDosage() int {
	switch d.Kind {
	case model.DosageOnceDaily:
		return 1
	case model.DosageTwiceDaily:
		return 2
	case model.DosageCustom:
		return d.CustomDosage
	default:
		return 0
	}
}

// CanAddReminder reports whether another reminder fits the daily dosage.
func (d Draft) CanAddReminder() bool {
	return len(d.Reminders) < d.DailyDosage()
}

// ExcessReminders is the number of reminders beyond the daily dosage.
func (d Draft) ExcessReminders() int {
	return max(len(d.Reminders)-d.DailyDosage(), 0)
}

// IsNew reports whether the draft has no stored record behind it.
func (d Draft) IsNew() bool {
	return d.ID == 0
}

// Commit converts the draft into a record. A new draft is stamped with now
// for both creation and last refill; an edited draft keeps the timestamps of
// the record it was loaded from.
func Commit(d Draft, now time.Time) model.Medicine {
	m := model.Medicine{
		ID:           d.ID,
		Name:         d.Name,
		Dosage:       d.DailyDosage(),
		Reminders:    model.SplitReminders(model.JoinReminders(d.Reminders)),
		RefillDays:   d.RefillDays,
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt,
		LastRefillAt: d.LastRefillAt,
	}
	if d.IsNew() {
		ms := now.UnixMilli()
		m.CreatedAt = ms
		m.LastRefillAt = ms
	}
	return m
}

// Load rebuilds a draft from a stored record for the edit flow. Stored
// dosages outside the draft ranges are clamped.
func Load(m model.Medicine) Draft {
	d := Draft{
		Name:         m.Name,
		Reminders:    model.SplitReminders(model.JoinReminders(m.Reminders)),
		RefillDays:   m.RefillDays,
		Notes:        m.Notes,
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		LastRefillAt: m.LastRefillAt,
	}
	switch {
	case m.Dosage <= 0:
		d.Kind = model.DosageUnset
	case m.Dosage == 1:
		d.Kind = model.DosageOnceDaily
	case m.Dosage == 2:
		d.Kind = model.DosageTwiceDaily
	default:
		d = d.SetDosageKind(model.DosageCustom).SetCustomDosage(m.Dosage)
	}
	return d
}
