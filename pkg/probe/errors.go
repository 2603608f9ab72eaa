package probe

import (
	"context"
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrEnvironment marks a failure of the probing primitive itself rather
	// than of the probed host
	ErrEnvironment = errors.New("probe environment failure")
	// ErrUnsupportedMethod is returned for unknown liveness methods
	ErrUnsupportedMethod = errors.New("unsupported liveness method")
)

// IsEnvironmentFailure reports whether err is a failure of the probing
// environment. Context cancellation is not.
func IsEnvironmentFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func environmentError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrEnvironment, op, err)
}

// isUnreachable reports send errors that just mean nobody is there
func isUnreachable(err error) bool {
	return errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTDOWN) ||
		errors.Is(err, syscall.EADDRNOTAVAIL)
}

// isResourceExhausted reports errors caused by running out of sockets or buffers
func isResourceExhausted(err error) bool {
	return errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS)
}
