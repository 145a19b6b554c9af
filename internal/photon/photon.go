package photon

import "gonum.org/v1/gonum/spatial/r3"

// DefaultWavelength is the wavelength in nanometres used when a star does
// not name one.
const DefaultWavelength = 550.0

// Photon is a point particle travelling along a straight line.
type Photon struct {
	Wavelength float64
	Position   r3.Vec
	Direction  r3.Vec
	TTL        int
}

// New returns a photon at pos heading along dir with the given lifetime.
func New(wavelength float64, pos, dir r3.Vec, ttl int) Photon {
	return Photon{
		Wavelength: wavelength,
		Position:   pos,
		Direction:  dir,
		TTL:        ttl,
	}
}

// Advance moves the photon one step of length speed along its direction and
// spends one tick of lifetime. It reports whether the photon is still alive.
func (p *Photon) Advance(speed float64) bool {
	p.Position = r3.Add(p.Position, r3.Scale(speed, p.Direction))
	p.TTL--
	return p.TTL > 0
}

// Batch is the set of photons spawned during one tick.
type Batch []Photon

// Len returns the number of photons still in the batch.
func (b Batch) Len() int { return len(b) }
