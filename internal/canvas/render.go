package canvas

import (
	"image"
	"math"

	"github.com/san-kum/photonsim/internal/spectrum"
)

// Render converts the canvas into an RGBA image. Brightness is the pixel
// weight normalised to the frame's peak and raised to 1/gamma.
func (c *Canvas) Render(mapper spectrum.Mapper, gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	c.RenderInto(img, mapper, gamma)
	return img
}

// RenderInto draws into an existing image of the canvas size.
func (c *Canvas) RenderInto(img *image.RGBA, mapper spectrum.Mapper, gamma float64) {
	peak := c.PeakWeight()
	if peak == 0 {
		peak = 1
	}
	if gamma <= 0 {
		gamma = 1
	}
	scale := 1.0 / peak

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			i := y*c.width + x
			p := img.PixOffset(x, y)
			img.Pix[p+3] = 255

			w := c.weight[i]
			if w <= 0 {
				img.Pix[p+0], img.Pix[p+1], img.Pix[p+2] = 0, 0, 0
				continue
			}
			n := math.Min(w*scale, 1)
			if gamma != 1 {
				n = math.Pow(n, 1.0/gamma)
			}
			r, g, b := mapper.RGB(c.mean[i])
			img.Pix[p+0] = uint8(math.Round(float64(r) * n))
			img.Pix[p+1] = uint8(math.Round(float64(g) * n))
			img.Pix[p+2] = uint8(math.Round(float64(b) * n))
		}
	}
}

// Downsample returns a cols×rows canvas whose pixels are block averages of
// this one. The mean wavelength of a block is weighted by pixel weight.
func (c *Canvas) Downsample(cols, rows int) *Canvas {
	out := New(cols, rows)
	if cols <= 0 || rows <= 0 {
		return out
	}

	for by := 0; by < rows; by++ {
		y0, y1 := by*c.height/rows, (by+1)*c.height/rows
		if y1 == y0 {
			y1 = y0 + 1
		}
		for bx := 0; bx < cols; bx++ {
			x0, x1 := bx*c.width/cols, (bx+1)*c.width/cols
			if x1 == x0 {
				x1 = x0 + 1
			}

			var sumW, sumL float64
			n := 0
			for y := y0; y < y1 && y < c.height; y++ {
				for x := x0; x < x1 && x < c.width; x++ {
					i := y*c.width + x
					sumW += c.weight[i]
					sumL += c.mean[i] * c.weight[i]
					n++
				}
			}
			if n == 0 || sumW == 0 {
				continue
			}
			j := by*cols + bx
			out.mean[j] = sumL / sumW
			out.weight[j] = sumW / float64(n)
		}
	}
	return out
}
