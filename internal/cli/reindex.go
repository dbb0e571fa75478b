package cli

import (
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the query index by replaying the atom ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := st.Reindex()
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"ok": true, "report": rep})
	},
}
