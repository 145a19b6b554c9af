//go:build window

package display

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/san-kum/photonsim/internal/world"
)

// Available reports whether the window backend is compiled in.
func Available() bool { return true }

type game struct {
	ctx    context.Context
	sim    Stepper
	opts   Options
	frame  *image.RGBA
	paused bool
	ticks  int
	stats  world.TickStats
}

// Run opens a window and ticks sim until the window is closed, the context
// is cancelled or a tick fails.
func Run(ctx context.Context, sim Stepper, opts Options) error {
	opts.defaults()
	cv := sim.Canvas()
	g := &game{
		ctx:   ctx,
		sim:   sim,
		opts:  opts,
		frame: image.NewRGBA(image.Rect(0, 0, cv.Width(), cv.Height())),
	}

	ebiten.SetWindowSize(cv.Width()*opts.Scale, cv.Height()*opts.Scale)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetTPS(opts.TPS)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return ctx.Err()
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sim.Canvas().Reset()
	}
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if g.paused || (g.opts.Limit > 0 && g.ticks >= g.opts.Limit) {
		return nil
	}
	st, err := g.sim.Tick(g.ctx)
	if err != nil {
		return err
	}
	g.stats = st
	g.ticks++
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.sim.Canvas().RenderInto(g.frame, g.opts.Mapper, g.opts.Gamma)
	screen.WritePixels(g.frame.Pix)

	status := "running"
	if g.paused {
		status = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("iter %d  absorbed %d  live %d  %s",
		g.stats.Iteration, g.stats.Absorbed, g.stats.Live, status))
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.frame.Rect.Dx(), g.frame.Rect.Dy()
}
