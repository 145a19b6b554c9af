// Package gravity integrates star motion under pairwise Newtonian attraction.
package gravity

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/photonsim/internal/star"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrUnknownMode = errors.New("gravity: unknown mode")

// Mode selects how accelerations are summed.
type Mode int

const (
	// Direct sums every pair exactly.
	Direct Mode = iota
	// BarnesHut approximates distant groups by their centre of mass.
	BarnesHut
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "direct":
		return Direct, nil
	case "barneshut", "barnes-hut":
		return BarnesHut, nil
	}
	return Direct, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

func (m Mode) String() string {
	if m == BarnesHut {
		return "barneshut"
	}
	return "direct"
}

const directChunk = 64

// Integrator advances stars by one tick. It keeps scratch buffers between
// calls and is not safe for concurrent use.
type Integrator struct {
	Mode      Mode
	Theta     float64
	Softening float64
	G         float64

	acc    []r3.Vec
	bodies []body
	parts  []barneshut.Particle3
}

// New returns an integrator using GUnit.
func New(mode Mode, theta, softening float64) *Integrator {
	return &Integrator{Mode: mode, Theta: theta, Softening: softening, G: GUnit}
}

// Step moves every star by its pre-step velocity, then adds the
// acceleration computed from pre-step positions to its velocity.
func (in *Integrator) Step(stars []star.Star) error {
	if len(stars) < 2 {
		for i := range stars {
			stars[i].Position = r3.Add(stars[i].Position, stars[i].Velocity)
		}
		return nil
	}

	acc, err := in.Accelerations(stars)
	if err != nil {
		return err
	}
	for i := range stars {
		stars[i].Position = r3.Add(stars[i].Position, stars[i].Velocity)
		stars[i].Velocity = r3.Add(stars[i].Velocity, acc[i])
	}
	return nil
}

// Accelerations returns the acceleration of every star. The slice is reused
// by the next call.
func (in *Integrator) Accelerations(stars []star.Star) ([]r3.Vec, error) {
	if cap(in.acc) < len(stars) {
		in.acc = make([]r3.Vec, len(stars))
	}
	in.acc = in.acc[:len(stars)]

	if in.Mode == BarnesHut {
		return in.acc, in.barnesHut(stars)
	}
	in.direct(stars)
	return in.acc, nil
}

// acceleration is the pull of a body of the given mass at squared distance r2.
func acceleration(g, mass, r2 float64) float64 {
	return mass / r2 * g
}

func (in *Integrator) direct(stars []star.Star) {
	eps2 := in.Softening * in.Softening
	parallelFor(len(stars), directChunk, func(start, end int) {
		for i := start; i < end; i++ {
			var a r3.Vec
			pi := stars[i].Position
			for j := range stars {
				if i == j {
					continue
				}
				delta := r3.Sub(stars[j].Position, pi)
				r2 := r3.Norm2(delta)
				if r2 == 0 {
					continue
				}
				mag := acceleration(in.G, stars[j].Mass, r2+eps2)
				a = r3.Add(a, r3.Scale(mag/math.Sqrt(r2), delta))
			}
			in.acc[i] = a
		}
	})
}

type body struct {
	pos  r3.Vec
	mass float64
}

func (b *body) Coord3() r3.Vec { return b.pos }
func (b *body) Mass() float64  { return b.mass }

func (in *Integrator) barnesHut(stars []star.Star) error {
	n := len(stars)
	if cap(in.bodies) < n {
		in.bodies = make([]body, n)
		in.parts = make([]barneshut.Particle3, n)
	}
	in.bodies = in.bodies[:n]
	in.parts = in.parts[:n]
	for i := range stars {
		in.bodies[i] = body{pos: stars[i].Position, mass: stars[i].Mass}
		in.parts[i] = &in.bodies[i]
	}

	vol, err := barneshut.NewVolume(in.parts)
	if err != nil {
		return fmt.Errorf("gravity: building octree: %w", err)
	}

	force := in.softened()
	parallelFor(n, directChunk, func(start, end int) {
		for i := start; i < end; i++ {
			f := vol.ForceOn(in.parts[i], in.Theta, force)
			in.acc[i] = r3.Scale(in.G/in.bodies[i].mass, f)
		}
	})
	return nil
}

// softened is Newtonian attraction of p1 toward p2 with the integrator's
// softening length. Coincident particles exert no force.
func (in *Integrator) softened() barneshut.Force3 {
	eps2 := in.Softening * in.Softening
	return func(_, _ barneshut.Particle3, m1, m2 float64, v r3.Vec) r3.Vec {
		r2 := r3.Norm2(v)
		if r2 == 0 {
			return r3.Vec{}
		}
		return r3.Scale(m1*m2/((r2+eps2)*math.Sqrt(r2)), v)
	}
}

// Energy returns the kinetic and potential energy of the system in
// simulation units.
func (in *Integrator) Energy(stars []star.Star) (kinetic, potential float64) {
	for i, s := range stars {
		kinetic += 0.5 * s.Mass * r3.Norm2(s.Velocity)
		for j := i + 1; j < len(stars); j++ {
			r := r3.Norm(r3.Sub(stars[j].Position, s.Position))
			if r == 0 {
				continue
			}
			potential -= in.G * s.Mass * stars[j].Mass / math.Sqrt(r*r+in.Softening*in.Softening)
		}
	}
	return kinetic, potential
}
