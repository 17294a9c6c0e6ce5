package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  "Show medicine, reminder and notification counts. Orphan jobs belong to medicines that no longer exist.",
		Run:   runStats,
	}

	cmd.Flags().Bool("prune", false, "Remove orphan jobs before reporting")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	prune, _ := cmd.Flags().GetBool("prune")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if prune {
		n, err := s.PruneOrphanJobs(cmd.Context())
		if err != nil {
			exitErr("prune", err)
		}
		logger.InfoContext(cmd.Context(), "pruned orphan jobs", slog.Int("count", n))
	}

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		renderStats(os.Stdout, stats)
		return
	}
	printJSON(stats)
}
