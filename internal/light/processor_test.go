package light_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/compute"
	"github.com/san-kum/photonsim/internal/light"
	"github.com/san-kum/photonsim/internal/photon"
)

type failingBackend struct {
	compute.Backend
}

var errDevice = errors.New("device lost")

func (f failingBackend) Await(h *compute.Handle) (compute.Result, error) {
	f.Backend.Await(h)
	return compute.Result{}, errDevice
}

var _ = Describe("Processor", func() {
	var (
		backend *compute.CPUBackend
		cam     camera.Camera
		cv      *canvas.Canvas
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = compute.NewCPUBackend(2)
		cam = camera.New(0.1, 1.0, r2.Vec{X: 2, Y: 2})
		cv = canvas.New(64, 64)
		ctx = context.Background()
	})

	AfterEach(func() {
		backend.Close()
	})

	It("absorbs an axial photon at the canvas centre", func() {
		w := light.NewWindow(4)
		w.Push(photon.Batch{photon.New(550, r3.Vec{Z: -0.5}, r3.Vec{Z: 1}, 10)})

		n, err := light.NewProcessor(backend, 1).Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Absorbed).To(Equal(1))

		mean, weight := cv.Pixel(32, 32)
		Expect(weight).To(BeNumerically("~", 1, 1e-9))
		Expect(mean).To(BeNumerically("~", 550, 1e-9))
		Expect(w.Photons()).To(BeZero())
	})

	It("keeps a photon that has not reached the sensor and absorbs it later", func() {
		w := light.NewWindow(4)
		w.Push(photon.Batch{photon.New(600, r3.Vec{Z: -2.5}, r3.Vec{Z: 1}, 10)})
		p := light.NewProcessor(backend, 1)

		n, err := p.Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Absorbed).To(BeZero())
		Expect(w.Photons()).To(Equal(1))

		n, err = p.Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Absorbed).To(BeZero())

		n, err = p.Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Absorbed).To(Equal(1))
		Expect(cv.TotalWeight()).To(BeNumerically(">", 0))
	})

	It("expires photons whose lifetime runs out", func() {
		w := light.NewWindow(4)
		w.Push(photon.Batch{
			photon.New(500, r3.Vec{X: 5, Z: -10}, r3.Vec{X: 1}, 1),
			photon.New(500, r3.Vec{X: 5, Z: -10}, r3.Vec{X: 1}, 2),
		})

		n, err := light.NewProcessor(backend, 1).Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Expired).To(Equal(1))
		Expect(w.Photons()).To(Equal(1))
	})

	It("processes many batches at once", func() {
		w := light.NewWindow(0)
		for i := 0; i < 10; i++ {
			b := make(photon.Batch, 500)
			for j := range b {
				b[j] = photon.New(520, r3.Vec{Z: -0.5}, r3.Vec{Z: 1}, 3)
			}
			w.Push(b)
		}

		n, err := light.NewProcessor(backend, 1).Process(ctx, w, cam, cv)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.Absorbed).To(Equal(5000))
		Expect(w.Sweep()).To(Equal(10))
		Expect(cv.TotalWeight()).To(BeNumerically("~", 5000, 1e-6))
	})

	It("returns the backend error", func() {
		w := light.NewWindow(0)
		w.Push(photon.Batch{})
		id, _ := w.Push(photon.Batch{photon.New(500, r3.Vec{Z: -3}, r3.Vec{Z: 1}, 3)})
		w.Sweep()

		_, err := light.NewProcessor(failingBackend{backend}, 1).Process(ctx, w, cam, cv)
		Expect(err).To(MatchError(errDevice))
		Expect(err.Error()).To(ContainSubstring(fmt.Sprintf("batch %d", id)))
	})

	It("stops on a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := light.NewProcessor(backend, 1).Process(cctx, light.NewWindow(1), cam, cv)
		Expect(err).To(MatchError(context.Canceled))
	})
})
