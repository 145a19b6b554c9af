// Package light owns the photon batches in flight and pushes them through a
// compute backend once per tick.
package light

import "github.com/san-kum/photonsim/internal/photon"

// BatchID identifies a batch in a Window. IDs increase monotonically and are
// never reused.
type BatchID uint64

type entry struct {
	id      BatchID
	photons photon.Batch
}

// Window retains the most recent batches, oldest first. Once more than Cap
// batches are held the oldest is evicted.
type Window struct {
	cap     int
	next    BatchID
	entries []entry
}

// NewWindow returns a window holding at most cap batches. cap <= 0 means
// unbounded.
func NewWindow(cap int) *Window {
	return &Window{cap: cap}
}

func (w *Window) Cap() int { return w.cap }
func (w *Window) Len() int { return len(w.entries) }

// Push appends a batch and evicts from the front until the window is back
// within its cap. It returns the new batch's ID and the number of photons
// dropped by eviction.
func (w *Window) Push(b photon.Batch) (id BatchID, evicted int) {
	id = w.next
	w.next++
	w.entries = append(w.entries, entry{id: id, photons: b})

	for w.cap > 0 && len(w.entries) > w.cap {
		evicted += len(w.entries[0].photons)
		w.entries[0] = entry{}
		w.entries = w.entries[1:]
	}
	return id, evicted
}

// IDs lists retained batches, oldest first.
func (w *Window) IDs() []BatchID {
	ids := make([]BatchID, len(w.entries))
	for i, e := range w.entries {
		ids[i] = e.id
	}
	return ids
}

// Photons counts live photons across all batches.
func (w *Window) Photons() int {
	n := 0
	for _, e := range w.entries {
		n += len(e.photons)
	}
	return n
}

// Sweep drops batches with no photons left and returns how many it removed.
func (w *Window) Sweep() int {
	kept := w.entries[:0]
	for _, e := range w.entries {
		if len(e.photons) > 0 {
			kept = append(kept, e)
		}
	}
	removed := len(w.entries) - len(kept)
	clear(w.entries[len(kept):])
	w.entries = kept
	return removed
}

// Reset drops every batch. IDs keep increasing.
func (w *Window) Reset() {
	clear(w.entries)
	w.entries = w.entries[:0]
}
