package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/med-reminder/internal/draft"
	"github.com/rcliao/med-reminder/internal/model"
	"github.com/rcliao/med-reminder/internal/store"
)

func TestAddRemindersRespectsDosage(t *testing.T) {
	d := draft.New().SetDosageKind(model.DosageTwiceDaily)

	d, err := addReminders(d, []string{"08:00", "8:00", "20:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "20:00"}, d.Reminders)

	_, err = addReminders(d, []string{"12:00"})
	assert.ErrorContains(t, err, "allows 2 reminder(s)")
}

func TestAddRemindersRejectsBadTime(t *testing.T) {
	d := draft.New().SetDosageKind(model.DosageOnceDaily)
	_, err := addReminders(d, []string{"25:00"})
	assert.Error(t, err)
}

func TestRemoveRemindersIgnoresRepeatedIndex(t *testing.T) {
	d := draft.New().SetDosageKind(model.DosageCustom).SetCustomDosage(3).
		AddReminder(8, 0).AddReminder(12, 0).AddReminder(20, 0)

	got := removeReminders(d, []int{1, 1})
	assert.Equal(t, []string{"08:00", "20:00"}, got.Reminders)

	got = removeReminders(d, []int{2, 0, 7})
	assert.Equal(t, []string{"12:00"}, got.Reminders)
	assert.Len(t, d.Reminders, 3)
}

func TestParseID(t *testing.T) {
	id, err := parseID("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"0", "-1", "x", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFilterByName(t *testing.T) {
	list := []model.Medicine{{Name: "Aspirin"}, {Name: "Ibuprofen"}, {Name: "aspirin 81"}}

	assert.Len(t, filterByName(list, "", 0), 3)
	assert.Len(t, filterByName(list, "ASPIRIN", 0), 2)
	assert.Len(t, filterByName(list, "", 1), 1)
}

func TestMedicineViewAndRender(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	m := model.Medicine{
		ID: 3, Name: "Aspirin", Dosage: 2, Reminders: []string{"08:00", "20:00"},
		RefillDays: 10, LastRefillAt: start.UnixMilli(), Notes: "with food",
	}

	v := newMedicineView(m, start.Add(5*24*time.Hour))
	assert.Equal(t, 5, v.DaysRemaining)
	assert.Equal(t, "soon", v.Urgency)
	assert.False(t, v.Overdue)
	assert.Equal(t, []string{"08:00 AM", "08:00 PM"}, v.Display)

	var buf bytes.Buffer
	renderMedicines(&buf, []medicineView{v})
	out := buf.String()
	assert.Contains(t, out, "Aspirin")
	assert.Contains(t, out, "5 days left")
	assert.Contains(t, out, "with food")

	overdue := newMedicineView(m, start.Add(20*24*time.Hour))
	assert.True(t, overdue.Overdue)
	assert.Contains(t, renderMedicine(overdue), "refill overdue")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderMedicines(&buf, nil)
	assert.Contains(t, buf.String(), "No medicines yet")
}

func TestRenderStatsFlagsOrphans(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, &store.Stats{DBPath: "/tmp/m.db", Medicines: 2, ReminderSlots: 3, PendingJobs: 4, OrphanJobs: 1})
	out := buf.String()
	assert.Contains(t, out, "/tmp/m.db")
	assert.Contains(t, out, "Orphan jobs")
	assert.Contains(t, out, "stats --prune")

	buf.Reset()
	renderStats(&buf, &store.Stats{DBPath: "/tmp/m.db"})
	assert.NotContains(t, buf.String(), "stats --prune")
}
