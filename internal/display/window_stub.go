//go:build !window

package display

import "context"

func Available() bool { return false }

func Run(context.Context, Stepper, Options) error {
	return ErrUnavailable
}
