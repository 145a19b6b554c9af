package main

import (
	"context"
	"testing"

	"github.com/san-kum/photonsim/internal/config"
	"github.com/spf13/cobra"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	simFlags(cmd)
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "")
	return cmd
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	cmd := newTestCommand(t)
	if err := cmd.Flags().Set("ttl", "12"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("backend", "cpu"); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.PhotonSpawnRate = 42
	applyFlags(cmd, cfg)

	if cfg.PhotonTTL != 12 {
		t.Errorf("expected ttl 12, got %d", cfg.PhotonTTL)
	}
	if cfg.Backend != "cpu" {
		t.Errorf("expected backend cpu, got %q", cfg.Backend)
	}
	if cfg.PhotonSpawnRate != 42 {
		t.Errorf("unchanged flag overrode spawn rate: %v", cfg.PhotonSpawnRate)
	}
}

func TestNewSessionTicks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "cpu"
	cfg.Workers = 2
	cfg.Seed = 7
	cfg.PhotonSpawnRate = 100
	cfg.Canvas.Width, cfg.Canvas.Height = 32, 32

	s, err := newSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.seed != 7 {
		t.Errorf("expected seed 7, got %d", s.seed)
	}
	if s.backend.Name() != "cpu" {
		t.Errorf("expected cpu backend, got %q", s.backend.Name())
	}
	st, err := s.world.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Spawned != 100 {
		t.Errorf("expected 100 photons spawned, got %d", st.Spawned)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := newLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := newLogger("debug"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
