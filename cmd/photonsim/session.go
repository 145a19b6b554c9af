package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/compute"
	"github.com/san-kum/photonsim/internal/config"
	"github.com/san-kum/photonsim/internal/gravity"
	"github.com/san-kum/photonsim/internal/world"
	"golang.org/x/exp/rand"
)

// session is one configured simulation: the world and the backend it owns.
type session struct {
	cfg     *config.Config
	seed    uint64
	backend compute.Backend
	world   *world.World
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level %q", config.ErrInvalid, level)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "photonsim",
		Level:           lvl,
	}), nil
}

func newSession(cfg *config.Config) (*session, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	mode, err := gravity.ParseMode(cfg.Gravity.Mode)
	if err != nil {
		return nil, err
	}

	backend, err := compute.Open(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, err
	}

	stars := cfg.BuildStars(rng)
	opts := world.Options{
		SpawnRate:    cfg.PhotonSpawnRate,
		TTL:          cfg.PhotonTTL,
		WindowCap:    cfg.WindowCap,
		FadeOutSpeed: cfg.FadeOutSpeed,
		TimeSpeed:    cfg.TimeSpeed,
		Sampling:     cfg.Sampling(),
	}
	if len(stars) > 1 {
		opts.Gravity = gravity.New(mode, cfg.Gravity.Theta, cfg.Gravity.Softening)
	}

	cv := canvas.New(cfg.Canvas.Width, cfg.Canvas.Height)
	w, err := world.New(opts, stars, cfg.CameraModel(), cv, backend, rng)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &session{cfg: cfg, seed: seed, backend: backend, world: w}, nil
}

func (s *session) Close() error { return s.backend.Close() }
