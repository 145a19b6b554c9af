package light_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/photonsim/internal/light"
	"github.com/san-kum/photonsim/internal/photon"
)

func batchOf(n int) photon.Batch {
	return make(photon.Batch, n)
}

var _ = Describe("Window", func() {
	It("keeps at most cap batches and evicts the oldest first", func() {
		w := light.NewWindow(3)
		var ids []light.BatchID
		for i := 1; i <= 5; i++ {
			id, _ := w.Push(batchOf(i))
			ids = append(ids, id)
			Expect(w.Len()).To(BeNumerically("<=", 3))
		}
		Expect(w.IDs()).To(Equal(ids[2:]))
	})

	It("reports the photons dropped by eviction", func() {
		w := light.NewWindow(1)
		_, evicted := w.Push(batchOf(4))
		Expect(evicted).To(BeZero())
		_, evicted = w.Push(batchOf(2))
		Expect(evicted).To(Equal(4))
		Expect(w.Photons()).To(Equal(2))
	})

	It("hands out increasing ids", func() {
		w := light.NewWindow(2)
		a, _ := w.Push(batchOf(1))
		b, _ := w.Push(batchOf(1))
		w.Reset()
		c, _ := w.Push(batchOf(1))
		Expect(a).To(BeNumerically("<", b))
		Expect(b).To(BeNumerically("<", c))
	})

	It("counts photons across batches", func() {
		w := light.NewWindow(0)
		w.Push(batchOf(7))
		w.Push(batchOf(5))
		Expect(w.Photons()).To(Equal(12))
		Expect(w.Len()).To(Equal(2))
	})

	It("sweeps empty batches", func() {
		w := light.NewWindow(0)
		w.Push(batchOf(0))
		keep, _ := w.Push(batchOf(3))
		w.Push(batchOf(0))

		Expect(w.Sweep()).To(Equal(2))
		Expect(w.IDs()).To(Equal([]light.BatchID{keep}))
		Expect(w.Sweep()).To(BeZero())
	})
})
