// Package camera implements a pinhole camera as a pure acceptance test over
// photon trajectories.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera faces -Z. The sensor lies on the plane Z = 0 and the aperture on
// Z = -FocalLength. It is immutable once built and safe for concurrent use.
type Camera struct {
	HoleRadius  float64
	FocalLength float64
	SensorSize  r2.Vec
}

// New returns a camera with the given aperture radius, focal length and
// sensor dimensions.
func New(holeRadius, focalLength float64, sensor r2.Vec) Camera {
	return Camera{HoleRadius: holeRadius, FocalLength: focalLength, SensorSize: sensor}
}

// Intersect tests a photon at pos whose next step moves it by step. If the
// step crosses the sensor plane inside the sensor rectangle after passing
// through the aperture, it returns the hit in [0,1]² and an accuracy in [0,1]
// where 0 is the aperture centre. Only the crossing test depends on the
// length of step.
func (c Camera) Intersect(pos, step r3.Vec) (uv r2.Vec, accuracy float64, ok bool) {
	if pos.Z >= 0 || pos.Z+step.Z < 0 {
		return r2.Vec{}, 0, false
	}

	t := -pos.Z / step.Z
	hit := r3.Add(pos, r3.Scale(t, step))

	uv = r2.Vec{X: hit.X / (c.SensorSize.X * 2), Y: hit.Y / (c.SensorSize.Y * 2)}
	if uv.X > 0.5 || uv.X < -0.5 || uv.Y > 0.5 || uv.Y < -0.5 {
		return r2.Vec{}, 0, false
	}

	hole := r3.Sub(hit, r3.Scale(c.FocalLength/step.Z, step))
	d2 := hole.X*hole.X + hole.Y*hole.Y
	r2h := c.HoleRadius * c.HoleRadius
	if d2 > r2h {
		return r2.Vec{}, 0, false
	}

	if r2h > 0 {
		accuracy = d2 / r2h
	}
	return r2.Vec{X: uv.X + 0.5, Y: uv.Y + 0.5}, accuracy, true
}
