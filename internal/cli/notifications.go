package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/med-reminder/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show fired reminders",
		Run:   runNotifications,
	}

	cmd.Flags().Int64("id", 0, "Only this medicine")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runNotifications(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt64("id")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	history, err := s.Notifications(cmd.Context(), store.NotificationParams{MedicineID: id, Limit: limit})
	if err != nil {
		exitErr("notifications", err)
	}

	printJSON(history)
}
