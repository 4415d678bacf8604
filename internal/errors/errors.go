package errors

import (
	"errors"
	"fmt"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*ServiceNotFoundError)(nil)
	_ BridgeError = (*ConnectionError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotRunning indicates the bridge process is dead or never became ready.
	ErrNotRunning = errors.New("bridge process is not running, restart the application")

	// ErrStdinUnavailable indicates the bridge stdin handle has been dropped.
	ErrStdinUnavailable = errors.New("bridge stdin not available, restart the application")

	// ErrUnknownMessage indicates a line matched neither the response nor the
	// event shape. Readers should log and skip it, never fail on it.
	ErrUnknownMessage = errors.New("unknown message shape")
)

// ServiceNotFoundError indicates the bridge service script was not found.
type ServiceNotFoundError struct {
	// StartDir is the directory the upward search started from.
	StartDir string

	// SearchedPaths lists every candidate location that was checked.
	SearchedPaths []string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf(
		"could not find bridge service starting from %s (searched %v); "+
			"ensure the project is built before starting the application",
		e.StartDir, e.SearchedPaths,
	)
}

// IsBridgeError implements BridgeError.
func (e *ServiceNotFoundError) IsBridgeError() bool { return true }

// ConnectionError indicates the bridge process failed to spawn or one of
// its standard stream pipes could not be obtained.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to start bridge service: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ConnectionError) IsBridgeError() bool { return true }
