package light

import (
	"context"
	"fmt"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/compute"
	"golang.org/x/sync/errgroup"
)

// Counts summarises one pass over a window.
type Counts struct {
	Absorbed int
	Expired  int
}

// Processor runs every retained batch through a backend.
type Processor struct {
	Backend   compute.Backend
	TimeSpeed float64
}

func NewProcessor(b compute.Backend, timeSpeed float64) *Processor {
	return &Processor{Backend: b, TimeSpeed: timeSpeed}
}

// Process submits all batches, then awaits them concurrently. Hits are
// written into the canvas as each batch completes and each batch is
// replaced by its survivors. The first error aborts the pass.
func (p *Processor) Process(ctx context.Context, w *Window, cam camera.Camera, c *canvas.Canvas) (Counts, error) {
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}

	ids := w.IDs()
	handles := make([]*compute.Handle, len(ids))
	for i := range ids {
		h, err := p.Backend.Submit(compute.Job{
			Photons:   w.entries[i].photons,
			Camera:    cam,
			TimeSpeed: p.TimeSpeed,
		})
		if err != nil {
			// already queued handles still have to be drained
			for _, prev := range handles[:i] {
				p.Backend.Await(prev)
			}
			return Counts{}, fmt.Errorf("submitting batch %d: %w", ids[i], err)
		}
		handles[i] = h
	}

	absorbed := make([]int, len(handles))
	expired := make([]int, len(handles))

	var g errgroup.Group
	for i, h := range handles {
		g.Go(func() error {
			res, err := p.Backend.Await(h)
			if err != nil {
				return fmt.Errorf("awaiting batch %d: %w", ids[i], err)
			}
			for _, hit := range res.Hits {
				c.UpdatePixelUV(hit.UV, hit.Wavelength, hit.Weight)
			}
			w.entries[i].photons = res.Survivors
			absorbed[i] = len(res.Hits)
			expired[i] = res.Expired
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}

	var n Counts
	for i := range handles {
		n.Absorbed += absorbed[i]
		n.Expired += expired[i]
	}
	return n, nil
}
