package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a medicine",
		Long:  "Show a medicine with its refill countdown and pending reminder jobs.",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	id, err := parseID(args[0])
	if err != nil {
		exitErr("get", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.Get(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}
	jobs, err := s.Jobs(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}

	now := clock()()
	v := newMedicineView(*m, now)
	v.withJobs(jobs, now.Location())

	if formatFlag == "text" {
		renderMedicines(os.Stdout, []medicineView{v})
		return
	}
	printJSON(v)
}
