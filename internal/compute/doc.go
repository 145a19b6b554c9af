// Package compute runs photon batches against a camera.
//
// Every backend implements the same submit/await contract: Submit queues a
// batch and returns a Handle at once, Await blocks until that batch has been
// tested and advanced.
//
//   - cpu: a persistent worker pool over contiguous chunks
//   - opencl: device offload of the advance step (build tag opencl)
//
// Open("auto", 0) picks OpenCL when a device is present and the CPU pool
// otherwise:
//
//	b, err := compute.Open("auto", 0)
//	h, err := b.Submit(compute.Job{Photons: batch, Camera: cam, TimeSpeed: 1})
//	res, err := b.Await(h)
//
// Build with device support:
//
//	go build -tags opencl ./...
package compute
