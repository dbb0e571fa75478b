package cli

import (
	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/engine"
)

var searchFlags struct {
	k     int
	decay bool
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "L1 hybrid search over the store",
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

		res, err := engine.RunSearch(r, st, cfg, args[0], searchFlags.k, searchFlags.decay)
		if err != nil {
			return err
		}

		out := make([]map[string]any, len(res.Seeds))
		for i, s := range res.Seeds {
			out[i] = map[string]any{
				"atom_id": s.AtomID,
				"score":   s.Score,
				"reasons": s.Reasons,
				"summary": s.Row.Summary,
			}
		}
		return printJSON(map[string]any{"ok": true, "results": out})
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchFlags.k, "k", 12, "number of results")
	searchCmd.Flags().BoolVar(&searchFlags.decay, "decay", false, "apply time-based decay before searching (persists)")
}
