// Package refill derives refill countdowns from a medicine's last refill.
package refill

import (
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// Urgency buckets the remaining days for display.
type Urgency int

const (
	Plenty Urgency = iota
	Soon
	Urgent
)

func (u Urgency) String() string {
	switch u {
	case Plenty:
		return "plenty"
	case Soon:
		return "soon"
	default:
		return "urgent"
	}
}

// daysElapsed is the number of whole days since the last refill. A clock
// behind the stored timestamp counts as zero days.
func daysElapsed(m model.Medicine, now time.Time) int64 {
	d := now.UnixMilli() - m.LastRefillAt
	if d < 0 {
		return 0
	}
	return d / dayMillis
}

// DaysRemaining returns the days left until the next refill, floored at 0.
func DaysRemaining(m model.Medicine, now time.Time) int {
	left := int64(m.RefillDays) - daysElapsed(m, now)
	if left < 0 {
		return 0
	}
	return int(left)
}

// Overdue reports whether more whole days have passed than the interval.
func Overdue(m model.Medicine, now time.Time) bool {
	return daysElapsed(m, now) > int64(m.RefillDays)
}

// MarkRefilled returns m with its last refill set to now.
func MarkRefilled(m model.Medicine, now time.Time) model.Medicine {
	m.LastRefillAt = now.UnixMilli()
	return m
}

// UrgencyOf buckets a remaining-days count.
func UrgencyOf(days int) Urgency {
	switch {
	case days > 7:
		return Plenty
	case days > 3:
		return Soon
	default:
		return Urgent
	}
}
