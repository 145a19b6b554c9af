package star

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Galaxy describes a procedurally placed disk of stars.
type Galaxy struct {
	Center    r3.Vec
	Top       r3.Vec // disk normal, need not be unit length
	Radius    float64
	Thickness float64
	Size      int
	Template  Star // mass, luminosity and wavelength copied to every star
}

// Spawn appends the galaxy's stars to out.
func (g Galaxy) Spawn(rng Source, out []Star) []Star {
	if g.Size <= 0 {
		return out
	}

	z := r3.Unit(g.Top)
	side := r3.Cross(g.Top, r3.Add(g.Top, r3.Vec{X: 1, Y: 1, Z: 1}))
	if r3.Norm2(side) == 0 {
		side = r3.Cross(g.Top, r3.Vec{X: 1})
	}
	x := r3.Unit(side)
	y := r3.Unit(r3.Cross(g.Top, x))

	for i := 0; i < g.Size; i++ {
		angle := float64(i) * 2 * math.Pi / float64(g.Size)
		r := rng.Float64() * g.Radius

		pos := g.Center
		pos = r3.Add(pos, r3.Scale(r*math.Cos(angle), x))
		pos = r3.Add(pos, r3.Scale(r*math.Sin(angle), y))
		pos = r3.Add(pos, r3.Scale(rng.Float64()*g.Thickness, z))

		s := g.Template
		s.Position = pos
		out = append(out, s)
	}
	return out
}
