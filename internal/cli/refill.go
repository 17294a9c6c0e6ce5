package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "refill <id>",
		Short: "Mark a medicine as refilled",
		Long:  "Record a refill now, restarting the refill countdown.",
		Args:  cobra.ExactArgs(1),
		Run:   runRefill,
	}

	RootCmd.AddCommand(cmd)
}

func runRefill(cmd *cobra.Command, args []string) {
	id, err := parseID(args[0])
	if err != nil {
		exitErr("refill", err)
	}

	svc, s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := svc.Refill(cmd.Context(), id)
	if err != nil {
		exitErr("refill", err)
	}

	v := newMedicineView(*m, clock()())
	if formatFlag == "text" {
		renderMedicines(os.Stdout, []medicineView{v})
		return
	}
	printJSON(v)
}
