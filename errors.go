package bridge

import "github.com/wagiedev/provider-bridge-go/internal/errors"

// Re-export error types from internal package

// ServiceNotFoundError indicates the bridge service script was not found.
type ServiceNotFoundError = errors.ServiceNotFoundError

// ConnectionError indicates the bridge process failed to spawn or a pipe
// could not be obtained.
type ConnectionError = errors.ConnectionError

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// Re-export sentinel errors from internal package.
var (
	// ErrNotRunning indicates the bridge process is dead or never became
	// ready. Requests fail fast with this error without writing anything.
	ErrNotRunning = errors.ErrNotRunning

	// ErrStdinUnavailable indicates the bridge stdin handle has been dropped.
	ErrStdinUnavailable = errors.ErrStdinUnavailable
)
