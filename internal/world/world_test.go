package world_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/compute"
	"github.com/san-kum/photonsim/internal/gravity"
	"github.com/san-kum/photonsim/internal/star"
	"github.com/san-kum/photonsim/internal/world"
)

var _ = Describe("World", func() {
	var (
		backend *compute.CPUBackend
		cam     camera.Camera
		cv      *canvas.Canvas
		opts    world.Options
		rng     *rand.Rand
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = compute.NewCPUBackend(2)
		cam = camera.New(0.1, 1.0, r2.Vec{X: 2, Y: 2})
		cv = canvas.New(64, 64)
		rng = rand.New(rand.NewSource(42))
		ctx = context.Background()
		opts = world.Options{
			SpawnRate:    20000,
			TTL:          16,
			WindowCap:    4,
			FadeOutSpeed: 0.95,
			TimeSpeed:    1,
			Sampling:     star.Uniform,
		}
	})

	AfterEach(func() {
		backend.Close()
	})

	newWorld := func(stars ...star.Star) *world.World {
		w, err := world.New(opts, stars, cam, cv, backend, rng)
		Expect(err).NotTo(HaveOccurred())
		return w
	}

	It("rejects a world without stars", func() {
		_, err := world.New(opts, nil, cam, cv, backend, rng)
		Expect(err).To(MatchError(world.ErrNoStars))
	})

	It("rejects a fade speed outside (0, 1]", func() {
		opts.FadeOutSpeed = 1.5
		_, err := world.New(opts, []star.Star{star.Default()}, cam, cv, backend, rng)
		Expect(err).To(MatchError(world.ErrInvalidOptions))
	})

	It("images an on-axis star at the centre of the canvas", func() {
		s := star.Default()
		s.Position = r3.Vec{Z: -0.5}
		w := newWorld(s)

		stats, err := w.Tick(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Spawned).To(Equal(20000))
		Expect(stats.Absorbed).To(BeNumerically(">", 0))
		Expect(stats.CanvasWeight).To(BeNumerically("~", cv.TotalWeight(), 1e-9))
		Expect(stats.CanvasWeight).To(BeNumerically(">", 0))
		Expect(stats.Energy).To(BeZero())

		// every accepted ray passes the aperture, so hits stay within
		// hole/sensor of the centre
		for y := 0; y < cv.Height(); y++ {
			for x := 0; x < cv.Width(); x++ {
				if _, weight := cv.Pixel(x, y); weight > 0 {
					Expect(x).To(BeNumerically("~", 32, 3))
					Expect(y).To(BeNumerically("~", 32, 3))
				}
			}
		}
	})

	It("conserves photons across ticks", func() {
		s := star.Default()
		s.Position = r3.Vec{Z: -3}
		opts.SpawnRate = 500
		opts.TTL = 3
		opts.WindowCap = 2
		w := newWorld(s)

		var spawned, gone int
		var last world.TickStats
		err := w.Run(ctx, 10, func(st world.TickStats) error {
			spawned += st.Spawned
			gone += st.Absorbed + st.Expired + st.Evicted
			last = st
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(spawned).To(Equal(gone + last.Live))
		Expect(last.Batches).To(BeNumerically("<=", 2))
		Expect(w.Iteration()).To(Equal(10))
	})

	It("fades the canvas when nothing new arrives", func() {
		s := star.Default()
		s.Position = r3.Vec{Z: -0.5}
		s.Luminosity = 0
		w := newWorld(s)

		cv.UpdatePixel(3, 3, 500, 1)
		_, err := w.Tick(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, weight := cv.Pixel(3, 3)
		Expect(weight).To(BeNumerically("~", 0.95, 1e-12))
	})

	It("moves stars under gravity", func() {
		opts.Gravity = gravity.New(gravity.Direct, 0, 0)
		opts.Gravity.G = 1
		opts.SpawnRate = 0
		a := star.Star{Position: r3.Vec{X: -1, Z: -10}, Mass: 1}
		b := star.Star{Position: r3.Vec{X: 1, Z: -10}, Mass: 1}
		w := newWorld(a, b)

		stats, err := w.Tick(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Stars()[0].Velocity.X).To(BeNumerically(">", 0))
		Expect(w.Stars()[1].Velocity.X).To(BeNumerically("<", 0))

		k, p := w.Energy()
		Expect(k).To(BeNumerically(">", 0))
		Expect(p).To(BeNumerically("<", 0))
		Expect(stats.Energy).To(BeNumerically("~", k+p, 1e-12))
	})

	It("stops on a cancelled context with the iteration attached", func() {
		w := newWorld(star.Default())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := w.Tick(cctx)
		Expect(err).To(MatchError(context.Canceled))

		var tickErr *world.TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Iteration).To(Equal(0))
	})

	It("stops when the callback fails", func() {
		w := newWorld(star.Default())
		stop := errors.New("stop")
		calls := 0
		err := w.Run(ctx, 5, func(world.TickStats) error {
			calls++
			return stop
		})
		Expect(err).To(MatchError(stop))
		Expect(calls).To(Equal(1))
	})

	DescribeTable("absorbs photons on the tick they reach the sensor",
		func(speed float64, firstTick int) {
			s := star.Default()
			s.Position = r3.Vec{Z: -2.5}
			opts.TimeSpeed = speed
			opts.TTL = 64
			opts.WindowCap = 16
			w := newWorld(s)

			first := -1
			var spawned, gone int
			var last world.TickStats
			err := w.Run(ctx, 16, func(st world.TickStats) error {
				if st.Absorbed > 0 && first < 0 {
					first = st.Iteration
				}
				spawned += st.Spawned
				gone += st.Absorbed + st.Expired + st.Evicted
				last = st
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(BeNumerically("~", firstTick, 1))
			Expect(spawned).To(Equal(gone + last.Live))
		},
		Entry("half steps", 0.5, 4),
		Entry("unit steps", 1.0, 2),
		Entry("double steps", 2.0, 1),
		Entry("steps longer than the star distance", 4.0, 0),
	)
})
