// Package cli wires the synaptic commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synaptic-ai/synaptic/internal/config"
	"github.com/synaptic-ai/synaptic/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "synaptic",
	Short: "Local append-only memory store for AI agents",
	Long: "Synaptic persists memory atoms to append-only ledgers with a SQLite query index,\n" +
		"retrieves them with hybrid lexical+vector+strength ranking, and manages growth\n" +
		"through time-based decay and budget pruning.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(serveCmd)
}

// openStore loads config from the environment and opens the store.
func openStore() (*store.Store, config.Config, error) {
	cfg := config.FromEnv()
	st, err := store.Open(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("open store: %w", err)
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, cfg, err
	}
	return st, cfg, nil
}

// printJSON writes a result object to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
