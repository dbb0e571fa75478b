package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.EmbedDim != 256 {
		t.Errorf("embed dim = %d, want 256", cfg.EmbedDim)
	}
	if cfg.DecayHalfLifeDays != 30 {
		t.Errorf("half life = %f, want 30", cfg.DecayHalfLifeDays)
	}
	if !cfg.DecayOnRetrieval {
		t.Error("decay on retrieval should default on")
	}
	if cfg.MaxAtomBytes != 32000 || cfg.MaxResultAtoms != 50 {
		t.Errorf("limits = %d/%d", cfg.MaxAtomBytes, cfg.MaxResultAtoms)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SYNAPTIC_HOME", t.TempDir())
	t.Setenv("SYNAPTIC_EMBED_DIM", "128")
	t.Setenv("SYNAPTIC_DECAY_HALF_LIFE_DAYS", "7.5")
	t.Setenv("SYNAPTIC_DECAY_ON_RETRIEVAL", "false")

	cfg := FromEnv()
	if cfg.EmbedDim != 128 {
		t.Errorf("embed dim = %d, want 128", cfg.EmbedDim)
	}
	if cfg.DecayHalfLifeDays != 7.5 {
		t.Errorf("half life = %f, want 7.5", cfg.DecayHalfLifeDays)
	}
	if cfg.DecayOnRetrieval {
		t.Error("decay on retrieval should be off")
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("SYNAPTIC_EMBED_DIM", "not-a-number")
	cfg := FromEnv()
	if cfg.EmbedDim != 256 {
		t.Errorf("embed dim = %d, want default 256", cfg.EmbedDim)
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:7797" {
		t.Errorf("addr = %q", got)
	}
}
