// Package cli implements the med-reminder CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/med-reminder/internal/config"
	"github.com/rcliao/med-reminder/internal/logging"
	"github.com/rcliao/med-reminder/internal/medicine"
	"github.com/rcliao/med-reminder/internal/schedule"
	"github.com/rcliao/med-reminder/internal/store"
)

var (
	dbPath     string
	formatFlag string

	cfg    *config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "med-reminder",
	Short: "Track medicines and get reminded to take them",
	Long:  "A tiny CLI for medication schedules. SQLite-backed, single binary. Run `med-reminder serve` to receive reminders.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c, err := config.Load()
		if err != nil {
			exitErr("config", err)
		}
		cfg = c
		logger = logging.New(cfg.Log, os.Stderr)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MED_REMINDER_DB or ~/.med-reminder/medicine.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// clock returns the current time in the configured zone.
func clock() func() time.Time {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func openService() (*medicine.Service, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	now := clock()
	sched := schedule.NewScheduler(s, schedule.WithClock(now), schedule.WithLogger(logger))
	return medicine.NewService(s, sched, now, logger), s, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// exitSave reports a failed add or edit. Missing medicines keep their own
// message; anything else is a generic save failure.
func exitSave(err error) {
	if errors.Is(err, store.ErrNotFound) {
		exitErr("edit", err)
	}
	logger.Error("save medicine", slog.String("error", err.Error()))
	fmt.Fprintln(os.Stderr, "error: could not save medicine, please try again")
	os.Exit(1)
}
