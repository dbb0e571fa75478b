package cli

import (
	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/engine"
)

var pruneFlags struct {
	maxMB  float64
	dryRun bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Evict lowest-priority atoms to fit a storage budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		maxBytes := int64(pruneFlags.maxMB * 1024 * 1024)
		rep, err := engine.PruneToBudget(st, cfg.DecayHalfLifeDays, maxBytes, pruneFlags.dryRun)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"ok": true, "report": rep})
	},
}

func init() {
	pruneCmd.Flags().Float64Var(&pruneFlags.maxMB, "max-mb", 50, "storage budget in megabytes")
	pruneCmd.Flags().BoolVar(&pruneFlags.dryRun, "dry-run", false, "report what would be removed without deleting")
}
