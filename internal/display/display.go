// Package display shows the canvas in a desktop window. The window backend
// is only compiled with the window build tag.
package display

import (
	"context"
	"errors"

	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/spectrum"
	"github.com/san-kum/photonsim/internal/world"
)

var ErrUnavailable = errors.New("display: window support not compiled in")

// Stepper is the part of a world the window drives.
type Stepper interface {
	Tick(ctx context.Context) (world.TickStats, error)
	Canvas() *canvas.Canvas
}

type Options struct {
	Title  string
	Scale  int
	Gamma  float64
	Mapper spectrum.Mapper
	Limit  int // stop ticking after this many iterations, 0 for no limit
	TPS    int // simulation ticks per second
}

func (o *Options) defaults() {
	if o.Title == "" {
		o.Title = "photonsim"
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Gamma <= 0 {
		o.Gamma = 1
	}
	if o.Mapper == nil {
		o.Mapper = spectrum.Default
	}
	if o.TPS <= 0 {
		o.TPS = 30
	}
}
