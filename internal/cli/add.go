package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/med-reminder/internal/draft"
	"github.com/rcliao/med-reminder/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine",
		Long:  "Add a medicine and schedule its daily reminders.",
		Run:   runAdd,
	}

	cmd.Flags().StringP("name", "n", "", "Medicine name (required)")
	cmd.Flags().String("dosage", "none", "Dosage: none, once, twice, custom")
	cmd.Flags().Int("custom", draft.MinCustomDosage, "Doses per day for custom dosage (3-10)")
	cmd.Flags().StringSliceP("at", "a", nil, "Reminder time HH:mm (repeatable or comma-separated)")
	cmd.Flags().StringP("refill-days", "r", "", "Days until refill (1-365)")
	cmd.Flags().String("notes", "", "Notes")

	cmd.MarkFlagRequired("name")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	dosage, _ := cmd.Flags().GetString("dosage")
	custom, _ := cmd.Flags().GetInt("custom")
	at, _ := cmd.Flags().GetStringSlice("at")
	refillDays, _ := cmd.Flags().GetString("refill-days")
	notes, _ := cmd.Flags().GetString("notes")

	kind, err := model.ParseDosageKind(dosage)
	if err != nil {
		exitErr("add", err)
	}

	d := draft.New().
		SetName(name).
		SetDosageKind(kind).
		SetCustomDosage(custom).
		SetRefillDays(refillDays).
		SetNotes(notes)

	d, err = addReminders(d, at)
	if err != nil {
		exitErr("add", err)
	}

	svc, s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := svc.Create(cmd.Context(), d)
	if err != nil {
		exitSave(err)
	}

	printJSON(m)
}

// addReminders applies reminder times to d, refusing more reminders than the
// daily dosage allows.
func addReminders(d draft.Draft, times []string) (draft.Draft, error) {
	for _, t := range times {
		hour, minute, err := model.ParseClock(t)
		if err != nil {
			return d, err
		}
		if !d.CanAddReminder() {
			return d, fmt.Errorf("dosage %s allows %d reminder(s) per day; cannot add %s",
				d.Kind, d.DailyDosage(), model.FormatClock(hour, minute))
		}
		next := d.AddReminder(hour, minute)
		if len(next.Reminders) == len(d.Reminders) {
			fmt.Fprintf(os.Stderr, "warning: reminder %s already set\n", model.FormatClock(hour, minute))
		}
		d = next
	}
	return d, nil
}
