// Package world advances the whole simulation one tick at a time: emission,
// batch processing against the camera, canvas fading and star motion.
package world

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/compute"
	"github.com/san-kum/photonsim/internal/gravity"
	"github.com/san-kum/photonsim/internal/light"
	"github.com/san-kum/photonsim/internal/photon"
	"github.com/san-kum/photonsim/internal/star"
)

// Options are the per-run tunables of a World.
type Options struct {
	SpawnRate    float64
	TTL          int
	WindowCap    int
	FadeOutSpeed float64
	TimeSpeed    float64
	Sampling     star.Sampling

	// Gravity integrates star motion after each tick. Nil leaves stars in
	// place.
	Gravity *gravity.Integrator
}

// TickStats describes what happened during one tick.
type TickStats struct {
	Iteration int
	Spawned   int
	Absorbed  int
	Expired   int
	Evicted   int
	Live      int
	Batches   int
	Elapsed   time.Duration

	// CanvasWeight is the total pixel weight after fading.
	CanvasWeight float64
	// Energy is the kinetic plus potential energy of the stars after they
	// moved. It stays 0 without gravity.
	Energy float64
}

// World owns the stars and the batch window. The canvas is shared with the
// caller, who may read it between ticks.
type World struct {
	opts      Options
	stars     []star.Star
	camera    camera.Camera
	canvas    *canvas.Canvas
	window    *light.Window
	processor *light.Processor
	emitter   star.Emitter
	iteration int
}

func New(opts Options, stars []star.Star, cam camera.Camera, cv *canvas.Canvas, backend compute.Backend, rng star.Source) (*World, error) {
	if len(stars) == 0 {
		return nil, ErrNoStars
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, got %d", ErrInvalidOptions, opts.TTL)
	}
	if opts.FadeOutSpeed <= 0 || opts.FadeOutSpeed > 1 {
		return nil, fmt.Errorf("%w: fade out speed %v outside (0, 1]", ErrInvalidOptions, opts.FadeOutSpeed)
	}

	return &World{
		opts:      opts,
		stars:     append([]star.Star(nil), stars...),
		camera:    cam,
		canvas:    cv,
		window:    light.NewWindow(opts.WindowCap),
		processor: light.NewProcessor(backend, opts.TimeSpeed),
		emitter: star.Emitter{
			SpawnRate: opts.SpawnRate,
			TTL:       opts.TTL,
			Sampling:  opts.Sampling,
			Rand:      rng,
		},
	}, nil
}

func (w *World) Stars() []star.Star     { return w.stars }
func (w *World) Canvas() *canvas.Canvas { return w.canvas }
func (w *World) Window() *light.Window  { return w.window }
func (w *World) Camera() camera.Camera  { return w.camera }
func (w *World) Iteration() int         { return w.iteration }

// Tick runs one simulation step:
//  1. every star emits into a fresh batch, evicting the oldest if over cap
//  2. all retained batches are processed against the camera
//  3. the canvas fades
//  4. stars move under gravity
//  5. emptied batches are released
func (w *World) Tick(ctx context.Context) (TickStats, error) {
	start := time.Now()
	stats := TickStats{Iteration: w.iteration}

	if err := ctx.Err(); err != nil {
		return stats, &TickError{Iteration: w.iteration, Wrapped: err}
	}

	batch := make(photon.Batch, 0, star.TotalPhotons(w.stars, w.opts.SpawnRate))
	for _, s := range w.stars {
		batch = w.emitter.Spawn(s, batch)
	}
	stats.Spawned = len(batch)
	_, stats.Evicted = w.window.Push(batch)

	counts, err := w.processor.Process(ctx, w.window, w.camera, w.canvas)
	if err != nil {
		return stats, &TickError{Iteration: w.iteration, Wrapped: err}
	}
	stats.Absorbed = counts.Absorbed
	stats.Expired = counts.Expired

	w.canvas.Fade(w.opts.FadeOutSpeed)
	stats.CanvasWeight = w.canvas.TotalWeight()

	if w.opts.Gravity != nil {
		if err := w.opts.Gravity.Step(w.stars); err != nil {
			return stats, &TickError{Iteration: w.iteration, Wrapped: err}
		}
		k, p := w.Energy()
		stats.Energy = k + p
	}

	w.window.Sweep()
	stats.Live = w.window.Photons()
	stats.Batches = w.window.Len()
	stats.Elapsed = time.Since(start)

	w.iteration++
	return stats, nil
}

// Energy returns the kinetic and potential energy of the stars, or zeros
// when the world has no gravity.
func (w *World) Energy() (kinetic, potential float64) {
	if w.opts.Gravity == nil {
		return 0, 0
	}
	return w.opts.Gravity.Energy(w.stars)
}

// Run ticks iterations times, calling fn after each tick. A non-nil error
// from fn stops the run and is returned.
func (w *World) Run(ctx context.Context, iterations int, fn func(TickStats) error) error {
	for i := 0; i < iterations; i++ {
		stats, err := w.Tick(ctx)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(stats); err != nil {
				return err
			}
		}
	}
	return nil
}
