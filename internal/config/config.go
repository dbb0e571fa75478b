// Package config holds synaptic configuration: defaults plus SYNAPTIC_*
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all synaptic configuration.
type Config struct {
	Home     string // data directory: ledgers + sqlite index
	EmbedDim int    // embedding dimension

	// L2 expansion
	L2NeighborK    int
	L2SimThreshold float64

	// Safety / limits
	MaxAtomBytes   int // byte cap for atom content and summary
	MaxResultAtoms int // cap for retrieval output size

	// Decay. Interpreted as an exponential half-life:
	// half_life_days=30 means strength halves every ~30 days of non-use.
	DecayHalfLifeDays float64
	DecayOnRetrieval  bool

	// Serve
	Bind string
	Port int
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Home:              "./synaptic_data",
		EmbedDim:          256,
		L2NeighborK:       30,
		L2SimThreshold:    0.25,
		MaxAtomBytes:      32000,
		MaxResultAtoms:    50,
		DecayHalfLifeDays: 30,
		DecayOnRetrieval:  true,
		Bind:              "127.0.0.1",
		Port:              7797,
	}
}

// FromEnv returns Default() with SYNAPTIC_* environment overrides applied.
func FromEnv() Config {
	cfg := Default()

	if home := os.Getenv("SYNAPTIC_HOME"); home != "" {
		if abs, err := filepath.Abs(home); err == nil {
			cfg.Home = abs
		} else {
			cfg.Home = home
		}
	}
	if v := os.Getenv("SYNAPTIC_EMBED_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbedDim = n
		}
	}
	if v := os.Getenv("SYNAPTIC_DECAY_HALF_LIFE_DAYS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DecayHalfLifeDays = f
		}
	}
	if v := os.Getenv("SYNAPTIC_DECAY_ON_RETRIEVAL"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no":
			cfg.DecayOnRetrieval = false
		default:
			cfg.DecayOnRetrieval = true
		}
	}

	return cfg
}

// ListenAddr returns the bind:port address string for the serve command.
func (c Config) ListenAddr() string {
	return c.Bind + ":" + strconv.Itoa(c.Port)
}
