package cli

import (
	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/engine"
)

var decayHalfLifeDays float64

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Apply time-based decay to stored strengths (maintenance)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		halfLife := cfg.DecayHalfLifeDays
		if decayHalfLifeDays > 0 {
			halfLife = decayHalfLifeDays
		}

		rep, err := engine.ApplyDecay(st, halfLife, engine.DefaultMinDelta)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"ok": true, "report": rep})
	},
}

func init() {
	decayCmd.Flags().Float64Var(&decayHalfLifeDays, "half-life-days", 0, "override decay half-life for this run")
}
