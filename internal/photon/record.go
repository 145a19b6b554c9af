package photon

import "gonum.org/v1/gonum/spatial/r3"

// Device record layout. Every photon occupies RecordFloats little-endian
// float32 values in this order:
//
//	0 pos.x   1 pos.y   2 pos.z   3 wavelength
//	4 dir.x   5 dir.y   6 dir.z   7 padding (always 0)
//
// Two float4 lanes keep each record 16-byte aligned on the device. Lifetime
// never leaves the host.
const (
	RecordFloats = 8
	RecordSize   = RecordFloats * 4
)

// EncodeRecords writes photons into dst using the device layout and returns
// the slice actually filled. dst is grown when it is too small.
func EncodeRecords(dst []float32, photons []Photon) []float32 {
	need := len(photons) * RecordFloats
	if cap(dst) < need {
		dst = make([]float32, need)
	}
	dst = dst[:need]

	for i, p := range photons {
		r := dst[i*RecordFloats : (i+1)*RecordFloats]
		r[0] = float32(p.Position.X)
		r[1] = float32(p.Position.Y)
		r[2] = float32(p.Position.Z)
		r[3] = float32(p.Wavelength)
		r[4] = float32(p.Direction.X)
		r[5] = float32(p.Direction.Y)
		r[6] = float32(p.Direction.Z)
		r[7] = 0
	}
	return dst
}

// DecodeRecord reads the i-th record of src.
func DecodeRecord(src []float32, i int) (pos, dir r3.Vec, wavelength float64) {
	r := src[i*RecordFloats : (i+1)*RecordFloats]
	pos = r3.Vec{X: float64(r[0]), Y: float64(r[1]), Z: float64(r[2])}
	dir = r3.Vec{X: float64(r[4]), Y: float64(r[5]), Z: float64(r[6])}
	return pos, dir, float64(r[3])
}
