package bridge

import (
	"log/slog"
	"time"

	"github.com/wagiedev/provider-bridge-go/internal/config"
)

// Option configures the bridge client.
type Option func(*config.Options)

// WithLogger sets the slog logger for transport diagnostics.
// Without it the client is silent.
func WithLogger(log *slog.Logger) Option {
	return func(o *config.Options) {
		o.Logger = log
	}
}

// WithScriptPath sets an explicit bridge script path, skipping discovery.
func WithScriptPath(path string) Option {
	return func(o *config.Options) {
		o.ScriptPath = path
	}
}

// WithNodePath overrides the Node.js executable used to run the bridge.
func WithNodePath(path string) Option {
	return func(o *config.Options) {
		o.NodePath = path
	}
}

// WithWorkingDir overrides the bridge process working directory. The
// default is the user's home directory.
func WithWorkingDir(dir string) Option {
	return func(o *config.Options) {
		o.WorkingDir = dir
	}
}

// WithReadyTimeout bounds the startup wait for the bridge's ready event.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *config.Options) {
		o.ReadyTimeout = d
	}
}

// WithEventSink sets the sink that receives forwarded bridge events.
// Use a Dispatcher to fan events out to multiple subscribers.
func WithEventSink(sink EventSink) Option {
	return func(o *config.Options) {
		o.Sink = sink
	}
}

// LoadOptions reads the TOML config file at path (or the default location
// when path is empty) and returns the matching options. Options built
// from the file compose with explicit ones; apply them first so explicit
// options win.
func LoadOptions(path string) ([]Option, error) {
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return []Option{func(o *config.Options) { f.Apply(o) }}, nil
}
