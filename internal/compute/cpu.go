package compute

import (
	"runtime"
	"sync"
)

// minChunk is the smallest slice of a batch handed to one worker.
const minChunk = 256

type chunk struct {
	lo, hi    int
	survivors int
	expired   int
	hits      []Hit
}

type task struct {
	h *Handle
	k int
}

// CPUBackend is a fixed pool of workers consuming chunk tasks. Each worker
// tests and advances its chunk in place, compacting survivors to the front.
type CPUBackend struct {
	workers int
	tasks   chan task
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewCPUBackend starts a pool of workers. workers <= 0 uses one per CPU.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c := &CPUBackend{
		workers: workers,
		tasks:   make(chan task, workers*4),
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) worker() {
	defer c.wg.Done()
	for t := range c.tasks {
		t.h.runChunk(t.k)
		t.h.wg.Done()
	}
}

func (h *Handle) runChunk(k int) {
	ch := &h.chunks[k]
	ps := h.job.Photons
	out := ch.lo
	for i := ch.lo; i < ch.hi; i++ {
		p := ps[i]
		hit, absorbed, alive := Step(&p, h.job.Camera, h.job.TimeSpeed)
		switch {
		case absorbed:
			ch.hits = append(ch.hits, hit)
		case alive:
			ps[out] = p
			out++
		default:
			ch.expired++
		}
	}
	ch.survivors = out - ch.lo
}

// Submit partitions the job into contiguous chunks and queues them.
func (c *CPUBackend) Submit(job Job) (*Handle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	h := &Handle{job: job, owner: c}
	n := len(job.Photons)
	if n == 0 {
		return h, nil
	}

	size := (n + c.workers - 1) / c.workers
	if size < minChunk {
		size = minChunk
	}
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		h.chunks = append(h.chunks, chunk{lo: lo, hi: hi})
	}

	h.wg.Add(len(h.chunks))
	for k := range h.chunks {
		c.tasks <- task{h: h, k: k}
	}
	return h, nil
}

// Await waits for every chunk and joins them: compacted survivors are moved
// together in order and hit lists are concatenated.
func (c *CPUBackend) Await(h *Handle) (Result, error) {
	if h == nil || h.owner != c {
		return Result{}, ErrForeignHandle
	}
	h.wg.Wait()
	h.once.Do(func() {
		ps := h.job.Photons
		total, hits := 0, 0
		for i := range h.chunks {
			hits += len(h.chunks[i].hits)
		}
		res := Result{Hits: make([]Hit, 0, hits)}
		for i := range h.chunks {
			ch := &h.chunks[i]
			copy(ps[total:], ps[ch.lo:ch.lo+ch.survivors])
			total += ch.survivors
			res.Expired += ch.expired
			res.Hits = append(res.Hits, ch.hits...)
		}
		res.Survivors = ps[:total]
		h.result = res
		h.chunks = nil
	})
	return h.result, h.err
}

// Close stops the workers after queued chunks finish.
func (c *CPUBackend) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.tasks)
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}
