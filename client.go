package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wagiedev/provider-bridge-go/internal/config"
	"github.com/wagiedev/provider-bridge-go/internal/discovery"
	"github.com/wagiedev/provider-bridge-go/internal/protocol"
	"github.com/wagiedev/provider-bridge-go/internal/subprocess"
	"github.com/wagiedev/provider-bridge-go/internal/term"
)

// EventSink receives bridge events forwarded by the transport, keyed by a
// fixed channel name. Message events arrive under MessageStreamChannel.
type EventSink = protocol.EventSink

// MessageStreamChannel is the channel name message events are forwarded
// under.
const MessageStreamChannel = protocol.MessageStreamChannel

// Client is the request/response facade over the bridge service process.
//
// A Client owns the child process and its reader goroutines. It is safe
// for concurrent use: any number of callers may issue requests at once,
// each suspending on its own correlation id. Close the client exactly
// once when done; Close is idempotent.
type Client struct {
	log  *slog.Logger
	proc *subprocess.Process
	conn *protocol.Conn

	closeOnce sync.Once
	closeErr  error
}

// New locates the bridge script, spawns the service, starts the reader
// goroutines, and waits up to the configured timeout for the bridge's
// ready event.
//
// Script discovery or spawn failure is fatal and returns an error. A
// readiness timeout is not: the client is returned usable but possibly
// non-functional, with a warning logged, so application startup never
// hangs on a slow bridge.
func New(opts ...Option) (*Client, error) {
	o := &config.Options{}
	for _, opt := range opts {
		opt(o)
	}

	log := o.Logger
	if log == nil {
		log = NopLogger()
	}

	scriptPath, err := discovery.Locate(&discovery.Config{
		ScriptPath: o.ScriptPath,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	proc, err := subprocess.Spawn(log, o.NodePath, scriptPath, o.WorkingDir)
	if err != nil {
		return nil, err
	}

	conn := protocol.NewConn(log, proc, o.Sink)
	conn.Start()

	if !conn.WaitReady(o.ReadyWait()) {
		log.Warn("bridge service did not send ready event in time, some features may not work",
			"timeout", o.ReadyWait())
	}

	return &Client{log: log, proc: proc, conn: conn}, nil
}

// Call sends a raw request and blocks until its response arrives or ctx
// ends. Most callers use the typed wrappers instead.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.conn.Call(ctx, method, params)
}

// Alive reports whether the bridge process is running and has announced
// readiness. Requests against a dead client fail fast without writing
// anything.
func (c *Client) Alive() bool {
	return c.conn.Alive()
}

// Close terminates the bridge process and waits for the reader goroutines
// to drain. It is idempotent; only the first call does any work.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.log.Debug("closing bridge client")

		c.closeErr = c.proc.Shutdown()

		// Killing the process closes its pipes, which unblocks both
		// reader loops.
		_ = c.conn.Wait()
	})

	return c.closeErr
}

// TriggerProviderLogin starts the native login flow for a provider CLI
// ("codex", "claude", or "gemini"). This is a fire-and-forget side
// operation that does not travel over the bridge transport; the returned
// string is a message for the user.
func TriggerProviderLogin(log *slog.Logger, provider string) (string, error) {
	return term.TriggerLogin(log, provider)
}
