package cli

import (
	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/engine"
)

var briefFlags struct {
	k     int
	l2    int
	meta  int
	decay bool
}

var briefCmd = &cobra.Command{
	Use:   "brief <query>",
	Short: "Build a memory brief (L1 + L2 + meta proposals)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := engine.NewRetriever(st, cfg)
		if err != nil {
			return err
		}
		defer r.Close()

		res, err := engine.RunBrief(r, st, cfg, args[0], briefFlags.k, briefFlags.l2, briefFlags.meta, briefFlags.decay)
		if err != nil {
			return err
		}

		return printJSON(map[string]any{
			"ok":              true,
			"brief":           res.Brief,
			"atom_ids":        res.AtomIDs,
			"l2_suggestions":  res.L2,
			"meta_candidates": res.Meta,
		})
	},
}

func init() {
	briefCmd.Flags().IntVar(&briefFlags.k, "k", 12, "number of L1 results")
	briefCmd.Flags().IntVar(&briefFlags.l2, "l2", 8, "number of L2 suggestions")
	briefCmd.Flags().IntVar(&briefFlags.meta, "meta", 3, "number of meta pattern candidates")
	briefCmd.Flags().BoolVar(&briefFlags.decay, "decay", false, "apply time-based decay before building the brief (persists)")
}
