package cli

import (
	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/store"
)

var addFlags struct {
	atomType   string
	scope      string
	tags       string
	entities   string
	content    string
	summary    string
	sourceKind string
	sourceRef  string
	pinned     bool
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a memory atom",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		source := map[string]any{}
		if addFlags.sourceKind != "" || addFlags.sourceRef != "" {
			source = map[string]any{"kind": addFlags.sourceKind, "ref": addFlags.sourceRef}
		}

		atom, err := st.AddAtom(store.AddParams{
			Type:     addFlags.atomType,
			Scope:    splitCSV(addFlags.scope),
			Tags:     splitCSV(addFlags.tags),
			Entities: splitCSV(addFlags.entities),
			Content:  addFlags.content,
			Summary:  addFlags.summary,
			Source:   source,
			Pinned:   addFlags.pinned,
		})
		if err != nil {
			return err
		}

		return printJSON(map[string]any{"ok": true, "atom": map[string]any{
			"atom_id": atom.AtomID, "ts": atom.TS, "type": atom.Type,
		}})
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.atomType, "type", "", "atom type (idea, decision, constraint, ...)")
	addCmd.Flags().StringVar(&addFlags.scope, "scope", "", "comma-separated scope namespaces")
	addCmd.Flags().StringVar(&addFlags.tags, "tags", "", "comma-separated tags")
	addCmd.Flags().StringVar(&addFlags.entities, "entities", "", "comma-separated entities")
	addCmd.Flags().StringVar(&addFlags.content, "content", "", "raw atom content")
	addCmd.Flags().StringVar(&addFlags.summary, "summary", "", "distilled summary (defaults to content)")
	addCmd.Flags().StringVar(&addFlags.sourceKind, "source-kind", "", "provenance kind")
	addCmd.Flags().StringVar(&addFlags.sourceRef, "source-ref", "", "provenance reference")
	addCmd.Flags().BoolVar(&addFlags.pinned, "pinned", false, "exempt from decay and forced eviction")
	addCmd.MarkFlagRequired("type")
	addCmd.MarkFlagRequired("content")
}
