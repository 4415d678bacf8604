package config

import (
	"log/slog"
	"time"

	"github.com/wagiedev/provider-bridge-go/internal/protocol"
)

// DefaultReadyTimeout bounds the startup wait for the bridge's ready
// event. On timeout the client is returned anyway (soft-fail); startup
// must not hang the whole application on a slow bridge.
const DefaultReadyTimeout = 5 * time.Second

// Options configures the bridge client.
type Options struct {
	// Logger is the slog logger for transport diagnostics.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// ScriptPath is an explicit bridge script path. When empty, the
	// script is discovered via the packaged resource path and an upward
	// search from the working directory.
	ScriptPath string

	// NodePath overrides the Node.js executable used to run the script.
	NodePath string

	// WorkingDir overrides the child process working directory. Defaults
	// to the user's home directory so the bridge finds user-level tool
	// configuration independent of install location.
	WorkingDir string

	// ReadyTimeout bounds the startup readiness wait.
	// Zero means DefaultReadyTimeout.
	ReadyTimeout time.Duration

	// Sink receives forwarded bridge events. May be nil.
	Sink protocol.EventSink
}

// ReadyWait returns the effective readiness timeout.
func (o *Options) ReadyWait() time.Duration {
	if o.ReadyTimeout <= 0 {
		return DefaultReadyTimeout
	}

	return o.ReadyTimeout
}
