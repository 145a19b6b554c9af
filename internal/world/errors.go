package world

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStars indicates a world built without any light source.
	ErrNoStars = errors.New("world: no stars")

	// ErrInvalidOptions indicates options outside their valid range.
	ErrInvalidOptions = errors.New("world: invalid options")
)

// TickError wraps an error with the iteration it happened in.
type TickError struct {
	Iteration int
	Wrapped   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Iteration, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
