// Package canvas accumulates accepted photons into a fading image.
//
// Each pixel keeps the weighted running mean of the wavelengths that reached
// it together with the total weight. Writes from concurrent batch processors
// are serialised per pixel through a fixed array of sharded mutexes.
package canvas

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

const numShards = 1024

type shardLocks struct{ mu [numShards]sync.Mutex }

func (sl *shardLocks) lock(idx int)   { sl.mu[idx&(numShards-1)].Lock() }
func (sl *shardLocks) unlock(idx int) { sl.mu[idx&(numShards-1)].Unlock() }

// Canvas is a width×height grid of (mean wavelength, weight) pixels.
type Canvas struct {
	width, height int
	mean          []float64
	weight        []float64
	locks         *shardLocks
}

// New allocates an empty canvas.
func New(width, height int) *Canvas {
	n := width * height
	return &Canvas{
		width:  width,
		height: height,
		mean:   make([]float64, n),
		weight: make([]float64, n),
		locks:  &shardLocks{},
	}
}

// Width is the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height is the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Pixel returns the mean wavelength and accumulated weight at (x, y). The
// mean is meaningless when the weight is zero.
func (c *Canvas) Pixel(x, y int) (mean, weight float64) {
	if !c.inBounds(x, y) {
		return 0, 0
	}
	i := y*c.width + x
	c.locks.lock(i)
	mean, weight = c.mean[i], c.weight[i]
	c.locks.unlock(i)
	return mean, weight
}

// UpdatePixel folds a sample of the given wavelength and weight into the
// running mean at (x, y). Non-positive weights and out-of-range coordinates
// are ignored.
func (c *Canvas) UpdatePixel(x, y int, wavelength, weight float64) {
	if weight <= 0 || !c.inBounds(x, y) {
		return
	}
	i := y*c.width + x

	c.locks.lock(i)
	w := c.weight[i]
	total := w + weight
	c.mean[i] = (c.mean[i]*w + wavelength*weight) / total
	c.weight[i] = total
	c.locks.unlock(i)
}

// UpdatePixelUV is UpdatePixel addressed by a coordinate in [0,1]². uv = 1
// lands on the last column or row.
func (c *Canvas) UpdatePixelUV(uv r2.Vec, wavelength, weight float64) {
	x, y := c.toPixel(uv)
	c.UpdatePixel(x, y, wavelength, weight)
}

func (c *Canvas) toPixel(uv r2.Vec) (int, int) {
	x := int(uv.X * float64(c.width))
	y := int(uv.Y * float64(c.height))
	if x == c.width && uv.X <= 1 {
		x = c.width - 1
	}
	if y == c.height && uv.Y <= 1 {
		y = c.height - 1
	}
	if uv.X < 0 {
		x = -1
	}
	if uv.Y < 0 {
		y = -1
	}
	return x, y
}

// Fade multiplies every pixel's weight by speed. It must not run while
// other goroutines are writing.
func (c *Canvas) Fade(speed float64) {
	for i := range c.weight {
		c.weight[i] *= speed
	}
}

// Reset clears every pixel.
func (c *Canvas) Reset() {
	clear(c.mean)
	clear(c.weight)
}

// TotalWeight sums the weight over all pixels.
func (c *Canvas) TotalWeight() float64 {
	var sum float64
	for _, w := range c.weight {
		sum += w
	}
	return sum
}

// PeakWeight is the largest pixel weight.
func (c *Canvas) PeakWeight() float64 {
	var peak float64
	for _, w := range c.weight {
		if w > peak {
			peak = w
		}
	}
	return peak
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}
