package compute

import (
	"math"
	"testing"

	"github.com/san-kum/photonsim/internal/photon"
)

func TestDispatchFor(t *testing.T) {
	for _, n := range []int{1, 2, 15, 16, 1000, 10000, 123457} {
		d := DispatchFor(n, photon.RecordSize)
		side := int(math.Ceil(math.Sqrt(float64(n * photon.RecordSize))))
		if d.Side != side {
			t.Errorf("n=%d: expected side %d, got %d", n, side, d.Side)
		}
		if threads := d.Global * d.Global; threads < n {
			t.Errorf("n=%d: %d threads do not cover the batch", n, threads)
		}
		if d.Global%WorkgroupSize != 0 {
			t.Errorf("n=%d: global %d not a multiple of %d", n, d.Global, WorkgroupSize)
		}
		if d.Global < side || d.Global >= side+WorkgroupSize {
			t.Errorf("n=%d: global %d outside [%d, %d)", n, d.Global, side, side+WorkgroupSize)
		}
	}
}

func TestDispatchEmpty(t *testing.T) {
	if d := DispatchFor(0, photon.RecordSize); d.Global != 0 {
		t.Errorf("expected an empty launch, got %+v", d)
	}
}

func TestLocalSize(t *testing.T) {
	tests := []struct {
		max  int
		want []int
	}{
		{max: 1024, want: []int{WorkgroupSize, WorkgroupSize}},
		{max: WorkgroupSize * WorkgroupSize, want: []int{WorkgroupSize, WorkgroupSize}},
		{max: 128, want: nil},
		{max: 1, want: nil},
	}
	for _, tc := range tests {
		got := LocalSize(tc.max)
		if len(got) != len(tc.want) {
			t.Errorf("max=%d: expected %v, got %v", tc.max, tc.want, got)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("max=%d: expected %v, got %v", tc.max, tc.want, got)
			}
		}
	}
}
