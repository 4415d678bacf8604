package protocol

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/provider-bridge-go/internal/errors"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading bridge output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB

	// readyPollInterval is how often WaitReady re-checks the readiness flag.
	// Polling is acceptable here: it runs once, at startup, not on a hot path.
	readyPollInterval = 100 * time.Millisecond
)

// Transport is the minimal process surface the connection needs.
//
// This interface is satisfied by subprocess.Process but allows for testing
// with fake transports built on in-memory pipes.
type Transport interface {
	// WriteLine writes one newline-terminated frame to the bridge stdin.
	// Implementations must serialize concurrent writes so frames never
	// interleave.
	WriteLine(data []byte) error

	// Output is the bridge stdout stream.
	Output() io.Reader

	// Diagnostics is the bridge stderr stream.
	Diagnostics() io.Reader

	// Alive reports whether the process handle and its input stream are
	// both present.
	Alive() bool

	// DropInput clears the input stream handle. The read loop calls this
	// on stdout EOF; it is the only proactive death-detection path.
	DropInput()
}

// EventSink receives bridge events that are not responses, keyed by a fixed
// channel name. The UI forwarder is the usual implementation.
type EventSink interface {
	Emit(channel string, data json.RawMessage)
}

// outcome is the resolution of one pending request.
type outcome struct {
	result json.RawMessage
	err    error
}

// Conn multiplexes request/response frames and out-of-band events over a
// Transport. One background goroutine reads stdout and routes each line,
// another relays stderr to the logger; callers of Call block on a one-shot
// channel until their response id arrives.
type Conn struct {
	log       *slog.Logger
	transport Transport
	sink      EventSink

	// idMu guards the next request id. Ids are strictly increasing from 1
	// and never reused, including across failed sends.
	idMu   sync.Mutex
	nextID uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan outcome

	readyMu sync.RWMutex
	ready   bool

	eg errgroup.Group
}

// NewConn creates a connection over the given transport. The sink may be
// nil, in which case message events are dropped with a debug log.
func NewConn(log *slog.Logger, transport Transport, sink EventSink) *Conn {
	return &Conn{
		log:       log.With("component", "bridge_conn"),
		transport: transport,
		sink:      sink,
		nextID:    1,
		pending:   make(map[uint64]chan outcome, 10),
	}
}

// Start launches the stdout demultiplexer and the stderr relay.
func (c *Conn) Start() {
	c.eg.Go(c.readLoop)
	c.eg.Go(c.relayLoop)
}

// Wait blocks until both reader goroutines have exited, which happens when
// the bridge process closes its output streams.
func (c *Conn) Wait() error {
	return c.eg.Wait()
}

// Ready reports whether the bridge has announced readiness.
func (c *Conn) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()

	return c.ready
}

// Alive reports whether the channel is usable: the process handle and its
// input stream are present and the ready event has been observed.
func (c *Conn) Alive() bool {
	return c.transport.Alive() && c.Ready()
}

// WaitReady polls the readiness flag until it is set or the timeout
// elapses. It returns the final state of the flag; callers treat a false
// return as a soft failure and proceed with a possibly non-functional
// channel rather than hang startup.
func (c *Conn) WaitReady(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if c.Ready() {
			return true
		}

		time.Sleep(readyPollInterval)
	}

	return c.Ready()
}

// Call sends one request and blocks until its response arrives or ctx ends.
//
// The pending entry is registered before the write so a response can never
// arrive unmatched: the bridge cannot answer a request it has not received,
// and registration happens before the write that reveals it. On a write
// failure the entry is removed again and the error describes the underlying
// cause. There is no per-request timeout; a request with no response waits
// until the caller's context is done.
//
// A remote error resolves to a plain error carrying exactly the reported
// string; an absent result resolves to JSON null.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if !c.Alive() {
		return nil, errors.ErrNotRunning
	}

	id := c.allocateID()

	ch := make(chan outcome, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	data, err := json.Marshal(&Request{ID: id, Method: method, Params: params})
	if err != nil {
		c.removePending(id)

		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.log.Debug("sending request", "id", id, "method", method)

	if err := c.transport.WriteLine(data); err != nil {
		c.removePending(id)

		return nil, fmt.Errorf("bridge process closed unexpectedly: %w", err)
	}

	select {
	case out := <-ch:
		return out.result, out.err

	case <-ctx.Done():
		// The entry stays registered; a late response is absorbed by the
		// buffered channel and silently discarded.
		c.log.Debug("caller abandoned request", "id", id)

		return nil, ctx.Err()
	}
}

// allocateID returns the next request id. The critical section is a single
// increment.
func (c *Conn) allocateID() uint64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()

	id := c.nextID
	c.nextID++

	return id
}

func (c *Conn) removePending(id uint64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// readLoop reads line-delimited frames from the bridge stdout, classifies
// each non-empty line, and routes it. The loop exits on EOF or a read
// error, at which point the input handle is dropped so Alive reports false.
func (c *Conn) readLoop() error {
	defer c.transport.DropInput()

	scanner := bufio.NewScanner(c.transport.Output())
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		c.handleLine(line)
	}

	if err := scanner.Err(); err != nil {
		c.log.Error("failed to read bridge stdout", "error", err)
	}

	c.log.Debug("stdout reader exiting")

	return nil
}

// handleLine routes one frame. Malformed lines are logged and dropped;
// nothing here may terminate the loop.
func (c *Conn) handleLine(line []byte) {
	resp, evt, err := Classify(line)
	if err != nil {
		c.log.Warn("unknown message from bridge", "line", string(line))

		return
	}

	if resp != nil {
		c.resolve(resp)

		return
	}

	c.handleEvent(evt)
}

// resolve completes the pending request matching the response id. Lookup
// and removal are a single critical section so a response is claimed by
// exactly one path.
func (c *Conn) resolve(resp *Response) {
	c.pendingMu.Lock()

	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}

	c.pendingMu.Unlock()

	if !ok {
		// No caller is waiting on this id; not an error visible to anyone.
		c.log.Warn("no pending request for response", "id", resp.ID)

		return
	}

	if resp.Error != nil {
		ch <- outcome{err: stderrors.New(*resp.Error)}

		return
	}

	ch <- outcome{result: resp.ResultOrNull()}
}

// handleEvent switches on the event name. The ready event sets the
// readiness flag (a monotonic false-to-true transition); message events are
// forwarded to the sink under the fixed channel name; anything else is
// logged as unrecognized.
func (c *Conn) handleEvent(evt *Event) {
	switch evt.Event {
	case EventReady:
		c.log.Info("bridge service is ready")

		c.readyMu.Lock()
		c.ready = true
		c.readyMu.Unlock()

	case EventMessage:
		if c.sink == nil {
			c.log.Debug("no event sink, dropping message event")

			return
		}

		c.sink.Emit(MessageStreamChannel, evt.Data)

	default:
		c.log.Warn("unrecognized event from bridge", "event", evt.Event)
	}
}

// relayLoop forwards each non-empty bridge stderr line to the logger
// verbatim. Failures here never touch the pending registry or the
// readiness flag.
func (c *Conn) relayLoop() error {
	scanner := bufio.NewScanner(c.transport.Diagnostics())

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		c.log.Warn("bridge stderr", "line", line)
	}

	if err := scanner.Err(); err != nil {
		c.log.Debug("stderr scanner error", "error", err)
	}

	c.log.Debug("stderr reader exiting")

	return nil
}
