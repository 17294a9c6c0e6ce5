package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/med-reminder/internal/model"
	"github.com/rcliao/med-reminder/internal/refill"
	"github.com/rcliao/med-reminder/internal/store"
)

// medicineView is a medicine with its derived refill state.
type medicineView struct {
	model.Medicine
	DaysRemaining int       `json:"days_remaining"`
	Overdue       bool      `json:"overdue"`
	Urgency       string    `json:"urgency"`
	Display       []string  `json:"reminders_display,omitempty"`
	Jobs          []jobView `json:"jobs,omitempty"`
}

type jobView struct {
	Key    string    `json:"key"`
	FireAt time.Time `json:"fire_at"`
}

func newMedicineView(m model.Medicine, now time.Time) medicineView {
	days := refill.DaysRemaining(m, now)
	v := medicineView{
		Medicine:      m,
		DaysRemaining: days,
		Overdue:       refill.Overdue(m, now),
		Urgency:       refill.UrgencyOf(days).String(),
	}
	for _, r := range m.Reminders {
		v.Display = append(v.Display, model.DisplayTime(r))
	}
	return v
}

func (v *medicineView) withJobs(jobs []model.Job, loc *time.Location) {
	for _, j := range jobs {
		v.Jobs = append(v.Jobs, jobView{Key: j.Key, FireAt: model.MillisToTime(j.FireAt).In(loc)})
	}
}

var (
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	plentyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	soonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

func urgencyStyle(u string) lipgloss.Style {
	switch u {
	case refill.Plenty.String():
		return plentyStyle
	case refill.Soon.String():
		return soonStyle
	default:
		return urgentStyle
	}
}

func renderMedicine(v medicineView) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Render(v.Name), " ", idStyle.Render(fmt.Sprintf("#%d", v.ID)))

	days := fmt.Sprintf("%d days left", v.DaysRemaining)
	if v.Overdue {
		days = "refill overdue"
	}

	reminders := strings.Join(v.Display, ", ")
	if reminders == "" {
		reminders = "none"
	}

	lines := []string{
		header,
		labelStyle.Render("Dosage:    ") + fmt.Sprintf("%d per day", v.Dosage),
		labelStyle.Render("Reminders: ") + reminders,
		labelStyle.Render("Refill:    ") + urgencyStyle(v.Urgency).Render(days),
	}
	if v.Notes != "" {
		lines = append(lines, labelStyle.Render("Notes:     ")+v.Notes)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderMedicines(w io.Writer, views []medicineView) {
	if len(views) == 0 {
		fmt.Fprintln(w, emptyStyle.Render("No medicines yet. Add one with `med-reminder add`."))
		return
	}
	for _, v := range views {
		fmt.Fprintln(w, renderMedicine(v))
	}
}

func renderStats(w io.Writer, st *store.Stats) {
	orphans := fmt.Sprintf("%d", st.OrphanJobs)
	if st.OrphanJobs > 0 {
		orphans = soonStyle.Render(orphans + " (run `stats --prune`)")
	}
	lines := []string{
		nameStyle.Render(st.DBPath) + " " + idStyle.Render(fmt.Sprintf("%d bytes", st.DBSizeBytes)),
		labelStyle.Render("Medicines:     ") + fmt.Sprintf("%d", st.Medicines),
		labelStyle.Render("Reminders:     ") + fmt.Sprintf("%d", st.ReminderSlots),
		labelStyle.Render("Pending jobs:  ") + fmt.Sprintf("%d", st.PendingJobs),
		labelStyle.Render("Orphan jobs:   ") + orphans,
		labelStyle.Render("Notifications: ") + fmt.Sprintf("%d", st.Notifications),
	}
	fmt.Fprintln(w, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
