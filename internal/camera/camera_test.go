package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func defaultCamera() Camera {
	return New(0.1, 1.0, r2.Vec{X: 2, Y: 2})
}

func TestIntersectAxial(t *testing.T) {
	c := defaultCamera()
	uv, acc, ok := c.Intersect(r3.Vec{Z: -0.5}, r3.Vec{Z: 1})
	if !ok {
		t.Fatal("expected axial photon to be accepted")
	}
	if math.Abs(uv.X-0.5) > 1e-12 || math.Abs(uv.Y-0.5) > 1e-12 {
		t.Errorf("expected uv (0.5, 0.5), got %v", uv)
	}
	if acc != 0 {
		t.Errorf("expected accuracy 0, got %v", acc)
	}
}

func TestIntersectRejects(t *testing.T) {
	c := defaultCamera()
	tests := []struct {
		name     string
		pos, dir r3.Vec
	}{
		{"on sensor", r3.Vec{}, r3.Vec{Z: 1}},
		{"behind sensor", r3.Vec{Z: 0.5}, r3.Vec{Z: 1}},
		{"step too short", r3.Vec{Z: -2}, r3.Vec{Z: 1}},
		{"fractional step too short", r3.Vec{Z: -0.8}, r3.Vec{Z: 0.25}},
		{"moving away", r3.Vec{Z: -0.5}, r3.Vec{Z: -1}},
		{"outside sensor", r3.Vec{X: 5, Z: -0.5}, r3.Vec{Z: 1}},
		{"misses hole", r3.Vec{X: 0.5, Z: -0.5}, r3.Vec{Z: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := c.Intersect(tc.pos, tc.dir); ok {
				t.Errorf("expected rejection for pos %v dir %v", tc.pos, tc.dir)
			}
		})
	}
}

func TestIntersectOblique(t *testing.T) {
	c := defaultCamera()
	// Passes through the aperture centre at z = -1 and lands at x = 0.2.
	dir := r3.Unit(r3.Vec{X: 0.2, Z: 1})
	pos := r3.Sub(r3.Vec{X: 0.2}, r3.Scale(0.5/dir.Z, dir))

	uv, acc, ok := c.Intersect(pos, dir)
	if !ok {
		t.Fatal("expected oblique photon through hole centre to be accepted")
	}
	if want := 0.2/4 + 0.5; math.Abs(uv.X-want) > 1e-9 {
		t.Errorf("expected uv.x %v, got %v", want, uv.X)
	}
	if math.Abs(uv.Y-0.5) > 1e-9 {
		t.Errorf("expected uv.y 0.5, got %v", uv.Y)
	}
	if acc > 1e-9 {
		t.Errorf("expected accuracy 0, got %v", acc)
	}
}

func TestIntersectBounds(t *testing.T) {
	c := defaultCamera()
	for i := 0; i < 200; i++ {
		x := (float64(i)/200 - 0.5) * 0.2
		for _, y := range []float64{-0.07, 0, 0.03} {
			uv, acc, ok := c.Intersect(r3.Vec{X: x, Y: y, Z: -0.25}, r3.Vec{Z: 1})
			if !ok {
				continue
			}
			if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
				t.Fatalf("uv %v outside unit square", uv)
			}
			if acc < 0 || acc > 1 {
				t.Fatalf("accuracy %v outside [0,1]", acc)
			}
		}
	}
}

func TestIntersectEdgeAccuracy(t *testing.T) {
	c := defaultCamera()
	_, acc, ok := c.Intersect(r3.Vec{X: 0.1, Z: -0.5}, r3.Vec{Z: 1})
	if !ok {
		t.Fatal("expected photon on hole rim to be accepted")
	}
	if math.Abs(acc-1) > 1e-9 {
		t.Errorf("expected accuracy 1 on rim, got %v", acc)
	}
}

func TestIntersectScaledStep(t *testing.T) {
	c := defaultCamera()
	for _, speed := range []float64{0.25, 1, 2, 8} {
		pos := r3.Vec{X: 0.02, Z: -speed / 2}
		uv, acc, ok := c.Intersect(pos, r3.Vec{X: 0, Z: speed})
		if !ok {
			t.Fatalf("speed=%v: expected a hit", speed)
		}
		want, wantAcc, _ := c.Intersect(pos, r3.Vec{Z: speed / 2})
		if uv != want || acc != wantAcc {
			t.Errorf("speed=%v: hit depends on step length: %v/%v vs %v/%v", speed, uv, acc, want, wantAcc)
		}
	}
}
