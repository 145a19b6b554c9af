//go:build opencl

package compute

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jgillich/go-opencl/cl"
	"github.com/san-kum/photonsim/internal/photon"
	"gonum.org/v1/gonum/spatial/r3"
)

const advanceKernelSource = `__kernel void advance_photons(
    __global float4* records,
    const int amount,
    const int width,
    const float time_speed)
{
    int idx = get_global_id(1) * width + get_global_id(0);
    if (idx >= amount) {
        return;
    }

    float4 pos = records[idx * 2];
    float4 dir = records[idx * 2 + 1];
    records[idx * 2] = (float4)(pos.xyz + dir.xyz * time_speed, pos.w);
}`

// OpenCLBackend advances photon positions on a device. The camera test runs
// on the host against each photon's pre-advance state once the device copy
// has been read back.
type OpenCLBackend struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	deviceName string
	local      []int

	mu     sync.Mutex
	closed bool
}

// NewOpenCLBackend acquires the first GPU, or failing that the first CPU
// device, and builds the advance kernel.
func NewOpenCLBackend() (*OpenCLBackend, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, msg, err)
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: no OpenCL platforms", ErrUnavailable)
	}

	device := findDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = findDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: no suitable OpenCL devices found", ErrUnavailable)
	}

	b := &OpenCLBackend{
		deviceName: device.Name(),
		local:      LocalSize(device.MaxWorkGroupSize()),
	}
	if err := b.init(device); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func findDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

func (b *OpenCLBackend) init(device *cl.Device) error {
	var err error
	b.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	b.queue, err = b.context.CreateCommandQueue(device, 0)
	if err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	b.program, err = b.context.CreateProgramWithSource([]string{advanceKernelSource})
	if err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := b.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		var buildErr cl.BuildError
		if errors.As(err, &buildErr) {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	b.kernel, err = b.program.CreateKernel("advance_photons")
	if err != nil {
		return fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return nil
}

func (b *OpenCLBackend) Name() string       { return "opencl" }
func (b *OpenCLBackend) Available() bool    { return true }
func (b *OpenCLBackend) DeviceName() string { return b.deviceName }

// Submit uploads the batch, enqueues the kernel and a non-blocking read into
// the handle's staging slice.
func (b *OpenCLBackend) Submit(job Job) (*Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	h := &Handle{job: job, owner: b}
	n := len(job.Photons)
	if n == 0 {
		return h, nil
	}

	h.staging = photon.EncodeRecords(nil, job.Photons)
	buf, err := b.context.CreateEmptyBuffer(cl.MemReadWrite, n*photon.RecordSize)
	if err != nil {
		return nil, fmt.Errorf("allocating record buffer: %w", err)
	}
	h.release = buf.Release

	if _, err := b.queue.EnqueueWriteBufferFloat32(buf, false, 0, h.staging, nil); err != nil {
		buf.Release()
		return nil, fmt.Errorf("writing record buffer: %w", err)
	}

	d := DispatchFor(n, photon.RecordSize)
	if err := b.kernel.SetArgs(buf, int32(n), int32(d.Global), float32(job.TimeSpeed)); err != nil {
		buf.Release()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	global := []int{d.Global, d.Global}
	if _, err := b.queue.EnqueueNDRangeKernel(b.kernel, nil, global, b.local, nil); err != nil {
		buf.Release()
		return nil, fmt.Errorf("enqueueing kernel: %w", err)
	}

	// The host keeps its own pre-advance copy in job.Photons, so the read
	// can overwrite staging in place.
	if _, err := b.queue.EnqueueReadBufferFloat32(buf, false, 0, h.staging, nil); err != nil {
		buf.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceMap, err)
	}
	return h, nil
}

// Await blocks until the device queue has drained. There is no timeout.
func (b *OpenCLBackend) Await(h *Handle) (Result, error) {
	if h == nil || h.owner != b {
		return Result{}, ErrForeignHandle
	}
	h.once.Do(func() {
		if len(h.job.Photons) == 0 {
			return
		}

		b.mu.Lock()
		err := b.queue.Finish()
		b.mu.Unlock()
		if h.release != nil {
			h.release()
		}
		if err != nil {
			h.err = fmt.Errorf("%w: %v", ErrDeviceMap, err)
			return
		}
		h.result = b.collect(h)
	})
	return h.result, h.err
}

func (b *OpenCLBackend) collect(h *Handle) Result {
	var res Result
	ps := h.job.Photons
	out := 0
	for i := range ps {
		p := ps[i]
		step := r3.Scale(h.job.TimeSpeed, p.Direction)
		if uv, acc, ok := h.job.Camera.Intersect(p.Position, step); ok {
			res.Hits = append(res.Hits, hitFor(&p, uv, acc))
			continue
		}
		p.TTL--
		if p.TTL <= 0 {
			res.Expired++
			continue
		}
		p.Position, _, _ = photon.DecodeRecord(h.staging, i)
		ps[out] = p
		out++
	}
	res.Survivors = ps[:out]
	h.staging = nil
	return res
}

func (b *OpenCLBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	if b.queue != nil {
		b.queue.Finish()
	}
	if b.kernel != nil {
		b.kernel.Release()
		b.kernel = nil
	}
	if b.program != nil {
		b.program.Release()
		b.program = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.context != nil {
		b.context.Release()
		b.context = nil
	}
	return nil
}
