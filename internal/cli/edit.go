package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/med-reminder/internal/draft"
	"github.com/rcliao/med-reminder/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a medicine",
		Long:  "Edit a medicine in place. Only the given flags change; reminders are rescheduled.",
		Args:  cobra.ExactArgs(1),
		Run:   runEdit,
	}

	cmd.Flags().StringP("name", "n", "", "Medicine name")
	cmd.Flags().String("dosage", "", "Dosage: none, once, twice, custom")
	cmd.Flags().Int("custom", 0, "Doses per day for custom dosage (3-10)")
	cmd.Flags().StringSlice("add-at", nil, "Add reminder time HH:mm")
	cmd.Flags().IntSlice("rm-at", nil, "Remove reminder by index (see `get`)")
	cmd.Flags().StringP("refill-days", "r", "", "Days until refill (1-365)")
	cmd.Flags().String("notes", "", "Notes")

	RootCmd.AddCommand(cmd)
}

func runEdit(cmd *cobra.Command, args []string) {
	id, err := parseID(args[0])
	if err != nil {
		exitErr("edit", err)
	}

	svc, s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	d, err := svc.Edit(cmd.Context(), id)
	if err != nil {
		exitErr("edit", err)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		d = d.SetName(name)
	}
	if flags.Changed("dosage") {
		dosage, _ := flags.GetString("dosage")
		kind, err := model.ParseDosageKind(dosage)
		if err != nil {
			exitErr("edit", err)
		}
		d = d.SetDosageKind(kind)
	}
	if flags.Changed("custom") {
		custom, _ := flags.GetInt("custom")
		d = d.SetCustomDosage(custom)
	}
	if flags.Changed("rm-at") {
		indices, _ := flags.GetIntSlice("rm-at")
		d = removeReminders(d, indices)
	}
	if flags.Changed("add-at") {
		at, _ := flags.GetStringSlice("add-at")
		if d, err = addReminders(d, at); err != nil {
			exitErr("edit", err)
		}
	}
	if flags.Changed("refill-days") {
		days, _ := flags.GetString("refill-days")
		d = d.SetRefillDays(days)
	}
	if flags.Changed("notes") {
		notes, _ := flags.GetString("notes")
		d = d.SetNotes(notes)
	}

	if n := d.ExcessReminders(); n > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d reminder(s) more than the %s dosage allows\n", n, d.Kind)
	}

	m, err := svc.Update(cmd.Context(), id, d)
	if err != nil {
		exitSave(err)
	}

	printJSON(m)
}

// removeReminders drops the reminders at indices, each at most once.
func removeReminders(d draft.Draft, indices []int) draft.Draft {
	indices = slices.Compact(slices.Sorted(slices.Values(indices)))
	// Highest first so earlier removals do not shift later indices.
	for _, i := range slices.Backward(indices) {
		d = d.RemoveReminder(i)
	}
	return d
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid medicine id %q", s)
	}
	return id, nil
}
