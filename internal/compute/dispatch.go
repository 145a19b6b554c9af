package compute

import "math"

// WorkgroupSize is the side of the square local work size.
const WorkgroupSize = 16

// Dispatch is a 2D kernel launch shape.
type Dispatch struct {
	Side   int // ceil(sqrt(byte size of the batch))
	Groups int // workgroups per axis
	Global int // global size per axis, Groups*WorkgroupSize
}

// LocalSize is the local work size for a device accepting at most
// maxWorkGroup items per group. Nil lets the driver choose when a
// WorkgroupSize square does not fit.
func LocalSize(maxWorkGroup int) []int {
	if maxWorkGroup < WorkgroupSize*WorkgroupSize {
		return nil
	}
	return []int{WorkgroupSize, WorkgroupSize}
}

// DispatchFor sizes a launch for amount photon records. The grid is a
// square whose side is derived from the batch's byte size, so it always
// covers at least amount threads.
func DispatchFor(amount, recordSize int) Dispatch {
	if amount <= 0 {
		return Dispatch{}
	}
	bytes := amount * recordSize
	side := int(math.Ceil(math.Sqrt(float64(bytes))))
	groups := (side + WorkgroupSize - 1) / WorkgroupSize
	return Dispatch{Side: side, Groups: groups, Global: groups * WorkgroupSize}
}
