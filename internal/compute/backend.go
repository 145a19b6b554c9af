package compute

import (
	"fmt"
	"sync"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/photon"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Job is one photon batch to be tested against a camera and advanced.
// Backends may reuse the Photons backing array for the survivors.
type Job struct {
	Photons   []photon.Photon
	Camera    camera.Camera
	TimeSpeed float64
}

// Hit is a canvas write produced by an absorbed photon. UV is already in
// canvas orientation.
type Hit struct {
	UV         r2.Vec
	Wavelength float64
	Weight     float64
}

// Result is what remains of a job after one step.
type Result struct {
	Hits      []Hit
	Survivors []photon.Photon
	Expired   int
}

// Backend runs jobs asynchronously. Submit returns immediately; Await blocks
// until the job's results are available.
type Backend interface {
	Name() string
	Available() bool
	Submit(job Job) (*Handle, error)
	Await(h *Handle) (Result, error)
	Close() error
}

// Handle is a pending job.
type Handle struct {
	job  Job
	wg   sync.WaitGroup
	once sync.Once

	result Result
	err    error

	// backend private state
	owner   any
	chunks  []chunk
	staging []float32
	release func()
}

// Info describes a backend for listing.
type Info struct {
	Name      string
	Available bool
	Detail    string
}

// Step applies one tick to a single photon: absorbed photons yield a hit,
// the rest advance. alive is false when the photon was absorbed or expired.
func Step(p *photon.Photon, cam camera.Camera, speed float64) (hit Hit, absorbed, alive bool) {
	if uv, acc, ok := cam.Intersect(p.Position, r3.Scale(speed, p.Direction)); ok {
		return hitFor(p, uv, acc), true, false
	}
	return Hit{}, false, p.Advance(speed)
}

func hitFor(p *photon.Photon, uv r2.Vec, accuracy float64) Hit {
	return Hit{
		UV:         r2.Vec{X: 1 - uv.X, Y: 1 - uv.Y},
		Wavelength: p.Wavelength,
		Weight:     1 - accuracy,
	}
}

// Sequential runs a job on the calling goroutine. It is the reference the
// parallel backends are measured against.
func Sequential(job Job) Result {
	var res Result
	out := job.Photons[:0]
	for i := range job.Photons {
		p := job.Photons[i]
		hit, absorbed, alive := Step(&p, job.Camera, job.TimeSpeed)
		switch {
		case absorbed:
			res.Hits = append(res.Hits, hit)
		case alive:
			out = append(out, p)
		default:
			res.Expired++
		}
	}
	res.Survivors = out
	return res
}

// Open returns the backend with the given name. "auto" prefers OpenCL and
// falls back to the CPU pool.
func Open(name string, workers int) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelect(workers), nil
	case "cpu":
		return NewCPUBackend(workers), nil
	case "opencl":
		b, err := NewOpenCLBackend()
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// AutoSelect picks the best available backend.
func AutoSelect(workers int) Backend {
	if b, err := NewOpenCLBackend(); err == nil {
		return b
	}
	return NewCPUBackend(workers)
}

// Backends reports every compiled-in backend.
func Backends() []Info {
	infos := []Info{{Name: "cpu", Available: true, Detail: "worker pool"}}

	b, err := NewOpenCLBackend()
	if err != nil {
		infos = append(infos, Info{Name: "opencl", Available: false, Detail: err.Error()})
		return infos
	}
	infos = append(infos, Info{Name: "opencl", Available: true, Detail: b.DeviceName()})
	b.Close()
	return infos
}
