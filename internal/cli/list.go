package cli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/med-reminder/internal/model"
	"github.com/rcliao/med-reminder/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List medicines",
		Long:  "List medicines, newest first, with days left until refill.",
		Run:   runList,
	}

	cmd.Flags().StringP("query", "q", "", "Filter by name")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().BoolP("watch", "w", false, "Keep running and print the list whenever it changes")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	watch, _ := cmd.Flags().GetBool("watch")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	now := clock()

	if watch {
		for medicines := range s.Watch(cmd.Context()) {
			printMedicines(filterByName(medicines, query, limit), now)
		}
		return
	}

	medicines, err := s.List(cmd.Context(), store.ListParams{Query: query, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}
	printMedicines(medicines, now)
}

func printMedicines(medicines []model.Medicine, now func() time.Time) {
	t := now()
	views := make([]medicineView, 0, len(medicines))
	for _, m := range medicines {
		views = append(views, newMedicineView(m, t))
	}

	if formatFlag == "text" {
		renderMedicines(os.Stdout, views)
		return
	}
	printJSON(views)
}

// filterByName applies list flags to a watched snapshot.
func filterByName(medicines []model.Medicine, query string, limit int) []model.Medicine {
	var out []model.Medicine
	for _, m := range medicines {
		if query != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
