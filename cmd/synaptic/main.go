package main

import (
	"os"

	"github.com/synaptic-ai/synaptic/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
