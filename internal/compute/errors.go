package compute

import "errors"

var (
	ErrUnavailable    = errors.New("compute: backend unavailable")
	ErrUnknownBackend = errors.New("compute: unknown backend")
	ErrDeviceMap      = errors.New("compute: device read failed")
	ErrClosed         = errors.New("compute: backend closed")
	ErrForeignHandle  = errors.New("compute: handle not issued by this backend")
)
