package star

import (
	"math"

	"github.com/san-kum/photonsim/internal/photon"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source produces independent uniform samples in [0, 1).
type Source interface {
	Float64() float64
}

// Sampling selects how emission directions are drawn.
type Sampling int

const (
	// Polar draws two independent uniform angles. It clusters at the poles
	// and is the default because accumulated images were tuned against it.
	Polar Sampling = iota
	// Uniform samples the unit sphere with equal density.
	Uniform
)

// ParseSampling maps a config string to a Sampling; unknown names fall back
// to Polar.
func ParseSampling(name string) Sampling {
	if name == "uniform" {
		return Uniform
	}
	return Polar
}

func (s Sampling) String() string {
	if s == Uniform {
		return "uniform"
	}
	return "polar"
}

// Star is a point light source with mass.
type Star struct {
	Position   r3.Vec
	Velocity   r3.Vec
	Mass       float64
	Luminosity float64
	Wavelength float64
}

// Default returns a unit-mass, unit-luminosity white star at the origin.
func Default() Star {
	return Star{
		Mass:       1.0,
		Luminosity: 1.0,
		Wavelength: photon.DefaultWavelength,
	}
}

// PhotonsPerFrame is the number of photons the star emits per tick.
func (s Star) PhotonsPerFrame(spawnRate float64) int {
	n := math.Round(s.Luminosity * spawnRate)
	if n <= 0 {
		return 0
	}
	return int(n)
}

// Emitter spawns photons from stars with a fixed rate, lifetime and sampling.
type Emitter struct {
	SpawnRate float64
	TTL       int
	Sampling  Sampling
	Rand      Source
}

// Spawn appends the star's photons for one tick to out.
func (e *Emitter) Spawn(s Star, out []photon.Photon) []photon.Photon {
	n := s.PhotonsPerFrame(e.SpawnRate)
	for i := 0; i < n; i++ {
		out = append(out, photon.New(s.Wavelength, s.Position, e.direction(), e.TTL))
	}
	return out
}

func (e *Emitter) direction() r3.Vec {
	if e.Sampling == Uniform {
		return UniformDirection(e.Rand)
	}
	return PolarDirection(e.Rand)
}

// PolarDirection reproduces the legacy emission pattern: theta and phi are
// independent and uniform on [-pi, pi).
func PolarDirection(rng Source) r3.Vec {
	theta := (rng.Float64() - 0.5) * 2 * math.Pi
	phi := (rng.Float64() - 0.5) * 2 * math.Pi
	return r3.Vec{
		X: math.Cos(theta) * math.Cos(phi),
		Y: math.Sin(phi),
		Z: math.Sin(theta) * math.Cos(phi),
	}
}

// UniformDirection returns a direction uniformly distributed on the sphere.
func UniformDirection(rng Source) r3.Vec {
	z := 2*rng.Float64() - 1
	a := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(math.Max(0, 1-z*z))
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
}

// SpawnPhotons appends this tick's photons for s to out.
func (s Star) SpawnPhotons(rng Source, out []photon.Photon, spawnRate float64, ttl int, mode Sampling) []photon.Photon {
	e := Emitter{SpawnRate: spawnRate, TTL: ttl, Sampling: mode, Rand: rng}
	return e.Spawn(s, out)
}

// TotalPhotons is the emission of all stars for one tick.
func TotalPhotons(stars []Star, spawnRate float64) int {
	total := 0
	for _, s := range stars {
		total += s.PhotonsPerFrame(spawnRate)
	}
	return total
}
