//go:build !opencl

package compute

import "fmt"

type OpenCLBackend struct{}

func NewOpenCLBackend() (*OpenCLBackend, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", ErrUnavailable)
}

func (b *OpenCLBackend) Name() string       { return "opencl" }
func (b *OpenCLBackend) Available() bool    { return false }
func (b *OpenCLBackend) DeviceName() string { return "" }

func (b *OpenCLBackend) Submit(Job) (*Handle, error)   { return nil, ErrUnavailable }
func (b *OpenCLBackend) Await(*Handle) (Result, error) { return Result{}, ErrUnavailable }
func (b *OpenCLBackend) Close() error                  { return nil }
