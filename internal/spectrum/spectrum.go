// Package spectrum maps photon wavelengths to displayable colors.
//
// The mapping is only used when a frame is exported or shown; the photon hot
// path never touches it.
package spectrum

import (
	"math"

	"github.com/crazy3lf/colorconv"
)

const (
	MinVisible = 380.0
	MaxVisible = 750.0

	// hue ramp anchors: 650nm is red (0°), 475nm is blue (240°)
	redAnchor  = 650.0
	blueAnchor = 475.0
	maxHue     = 270.0
)

// Mapper converts a wavelength in nanometres to an sRGB triple.
type Mapper interface {
	RGB(wavelength float64) (r, g, b uint8)
}

// Table is a 1nm lookup table over the visible range.
type Table struct {
	rgb [][3]uint8
}

// Default is the table used by canvases that are not given one.
var Default = NewTable()

// NewTable precomputes the visible range.
func NewTable() *Table {
	n := int(MaxVisible-MinVisible) + 1
	t := &Table{rgb: make([][3]uint8, n)}
	for i := range t.rgb {
		r, g, b := Convert(MinVisible + float64(i))
		t.rgb[i] = [3]uint8{r, g, b}
	}
	return t
}

// RGB returns the color of the nearest tabulated wavelength, black outside
// the visible range.
func (t *Table) RGB(wavelength float64) (r, g, b uint8) {
	if wavelength < MinVisible || wavelength > MaxVisible || math.IsNaN(wavelength) {
		return 0, 0, 0
	}
	i := int(math.Round(wavelength - MinVisible))
	if i >= len(t.rgb) {
		i = len(t.rgb) - 1
	}
	c := t.rgb[i]
	return c[0], c[1], c[2]
}

// Hue returns the HSL hue in degrees for a visible wavelength.
func Hue(wavelength float64) float64 {
	hue := (redAnchor - wavelength) * 240 / (redAnchor - blueAnchor)
	return math.Max(0, math.Min(maxHue, hue))
}

// Convert computes the color of a wavelength without the table.
func Convert(wavelength float64) (r, g, b uint8) {
	if wavelength < MinVisible || wavelength > MaxVisible {
		return 0, 0, 0
	}
	r, g, b, err := colorconv.HSLToRGB(Hue(wavelength), 1, 0.5)
	if err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
