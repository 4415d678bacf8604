package protocol

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/provider-bridge-go/internal/errors"
)

// fakeTransport is an in-memory Transport. Tests inject bridge output by
// writing lines to the output pipe and observe written frames on the
// wrote channel.
type fakeTransport struct {
	mu       sync.Mutex
	alive    bool
	writeErr error

	wrote chan []byte

	outR *io.PipeReader
	outW *io.PipeWriter
	errR *io.PipeReader
	errW *io.PipeWriter
}

func newFakeTransport() *fakeTransport {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()

	return &fakeTransport{
		alive: true,
		wrote: make(chan []byte, 100),
		outR:  outR,
		outW:  outW,
		errR:  errR,
		errW:  errW,
	}
}

func (t *fakeTransport) WriteLine(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.alive {
		return errors.ErrStdinUnavailable
	}

	if t.writeErr != nil {
		return t.writeErr
	}

	frame := make([]byte, len(data))
	copy(frame, data)
	t.wrote <- frame

	return nil
}

func (t *fakeTransport) Output() io.Reader      { return t.outR }
func (t *fakeTransport) Diagnostics() io.Reader { return t.errR }

func (t *fakeTransport) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.alive
}

func (t *fakeTransport) DropInput() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.alive = false
}

func (t *fakeTransport) setWriteErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.writeErr = err
}

// emit writes one line of bridge output.
func (t *fakeTransport) emit(line string) {
	_, _ = t.outW.Write([]byte(line + "\n"))
}

// closeOutput simulates the bridge process dying.
func (t *fakeTransport) closeOutput() {
	_ = t.outW.Close()
	_ = t.errW.Close()
}

// wireRequest is a decoded outbound frame as seen by the fake bridge.
type wireRequest struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// nextWrite returns the next frame written to the bridge, decoded.
func (t *fakeTransport) nextWrite(tb testing.TB) wireRequest {
	tb.Helper()

	select {
	case frame := <-t.wrote:
		var req wireRequest
		require.NoError(tb, json.Unmarshal(frame, &req))

		return req

	case <-time.After(2 * time.Second):
		tb.Fatal("no frame written to bridge")

		return wireRequest{}
	}
}

// newReadyConn returns a started connection whose transport has already
// announced readiness.
func newReadyConn(t *testing.T, sink EventSink) (*Conn, *fakeTransport) {
	t.Helper()

	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, sink)
	conn.Start()

	transport.emit(`{"event":"ready","data":{}}`)
	require.True(t, conn.WaitReady(2*time.Second))

	t.Cleanup(func() {
		transport.closeOutput()
		_ = conn.Wait()
	})

	return conn, transport
}

func TestConn_CallResolvesByID(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	ctx := context.Background()

	done := make(chan struct{})

	var (
		result  json.RawMessage
		callErr error
	)

	go func() {
		defer close(done)

		result, callErr = conn.Call(ctx, "listProviders", map[string]any{})
	}()

	req := transport.nextWrite(t)
	require.Equal(t, uint64(1), req.ID)
	require.Equal(t, "listProviders", req.Method)
	require.JSONEq(t, `{}`, string(req.Params))

	transport.emit(`{"id":1,"result":{"providers":["codex","claude","gemini"]}}`)

	<-done
	require.NoError(t, callErr)
	require.JSONEq(t, `{"providers":["codex","claude","gemini"]}`, string(result))
}

func TestConn_ConcurrentCallsResolveOutOfOrder(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	ctx := context.Background()
	numCalls := 20

	results := make([]json.RawMessage, numCalls)
	errs := make([]error, numCalls)

	var wg sync.WaitGroup

	for i := 0; i < numCalls; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], errs[i] = conn.Call(ctx, "sendMessage", map[string]any{"n": i})
		}()
	}

	// Collect every written frame, remember which caller (by the n in
	// its params) got which id, then answer in reverse arrival order
	// with a payload naming the request id.
	idByCaller := make(map[int]uint64, numCalls)
	ids := make([]uint64, 0, numCalls)

	for i := 0; i < numCalls; i++ {
		req := transport.nextWrite(t)

		var params struct {
			N int `json:"n"`
		}
		require.NoError(t, json.Unmarshal(req.Params, &params))

		idByCaller[params.N] = req.ID
		ids = append(ids, req.ID)
	}

	for i := len(ids) - 1; i >= 0; i-- {
		transport.emit(fmt.Sprintf(`{"id":%d,"result":{"echo":%d}}`, ids[i], ids[i]))
	}

	wg.Wait()

	for i := 0; i < numCalls; i++ {
		require.NoError(t, errs[i])

		var payload struct {
			Echo uint64 `json:"echo"`
		}
		require.NoError(t, json.Unmarshal(results[i], &payload))
		require.Equal(t, idByCaller[i], payload.Echo,
			"caller %d must receive the response bearing its own id", i)
	}
}

func TestConn_IDsStrictlyIncreaseAcrossFailedSends(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	ctx := context.Background()

	transport.setWriteErr(stderrors.New("broken pipe"))

	_, err := conn.Call(ctx, "stop", map[string]any{})
	require.ErrorContains(t, err, "bridge process closed unexpectedly")
	require.ErrorContains(t, err, "broken pipe")

	// The failed attempt consumed id 1 and cleaned up its entry.
	conn.pendingMu.Lock()
	require.Empty(t, conn.pending)
	conn.pendingMu.Unlock()

	transport.setWriteErr(nil)

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = conn.Call(ctx, "stop", map[string]any{})
	}()

	req := transport.nextWrite(t)
	require.Equal(t, uint64(2), req.ID, "ids are never reused, even after failed sends")

	transport.emit(`{"id":2,"result":null}`)
	<-done
}

func TestConn_NotAliveConsumesNoID(t *testing.T) {
	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, nil)
	conn.Start()

	t.Cleanup(func() {
		transport.closeOutput()
		_ = conn.Wait()
	})

	// No ready event observed: liveness fails fast.
	_, err := conn.Call(context.Background(), "listProviders", map[string]any{})
	require.ErrorIs(t, err, errors.ErrNotRunning)

	require.Empty(t, transport.wrote, "nothing may be written on a liveness failure")

	conn.idMu.Lock()
	require.Equal(t, uint64(1), conn.nextID, "no id may be consumed on a liveness failure")
	conn.idMu.Unlock()

	conn.pendingMu.Lock()
	require.Empty(t, conn.pending)
	conn.pendingMu.Unlock()
}

func TestConn_RemoteErrorSurfacesVerbatim(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	done := make(chan error, 1)

	go func() {
		_, err := conn.Call(context.Background(), "switchProfile", map[string]any{"profileId": "x"})
		done <- err
	}()

	req := transport.nextWrite(t)
	transport.emit(fmt.Sprintf(`{"id":%d,"error":"invalid profile"}`, req.ID))

	err := <-done
	require.Error(t, err)
	require.Equal(t, "invalid profile", err.Error())
}

func TestConn_AbsentResultResolvesToNull(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	done := make(chan json.RawMessage, 1)

	go func() {
		result, err := conn.Call(context.Background(), "stop", map[string]any{})
		require.NoError(t, err)
		done <- result
	}()

	req := transport.nextWrite(t)
	transport.emit(fmt.Sprintf(`{"id":%d}`, req.ID))

	require.JSONEq(t, `null`, string(<-done))
}

func TestConn_UnmatchedResponseDropped(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	// Nobody is waiting on id 99; the frame is logged and dropped, and
	// the loop keeps serving later responses.
	transport.emit(`{"id":99,"result":{}}`)

	done := make(chan error, 1)

	go func() {
		_, err := conn.Call(context.Background(), "listProfiles", map[string]any{})
		done <- err
	}()

	req := transport.nextWrite(t)
	transport.emit(fmt.Sprintf(`{"id":%d,"result":[]}`, req.ID))

	require.NoError(t, <-done)
}

func TestConn_MalformedLinesDoNotKillLoop(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	transport.emit(`this is not json`)
	transport.emit(`{"neither":"shape"}`)
	transport.emit(``)

	done := make(chan error, 1)

	go func() {
		_, err := conn.Call(context.Background(), "getCurrentProfile", map[string]any{})
		done <- err
	}()

	req := transport.nextWrite(t)
	transport.emit(fmt.Sprintf(`{"id":%d,"result":{"name":"default"}}`, req.ID))

	require.NoError(t, <-done)
}

func TestConn_UnknownEventHasNoEffect(t *testing.T) {
	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, nil)
	conn.Start()

	t.Cleanup(func() {
		transport.closeOutput()
		_ = conn.Wait()
	})

	transport.emit(`{"event":"telemetry","data":{"x":1}}`)

	// Give the loop a moment to route the frame, then verify nothing moved.
	time.Sleep(50 * time.Millisecond)
	require.False(t, conn.Ready(), "only the ready event may set the readiness flag")

	conn.pendingMu.Lock()
	require.Empty(t, conn.pending)
	conn.pendingMu.Unlock()
}

func TestConn_ReadyEventFlipsAlive(t *testing.T) {
	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, nil)
	conn.Start()

	t.Cleanup(func() {
		transport.closeOutput()
		_ = conn.Wait()
	})

	require.False(t, conn.Alive(), "not alive before the ready event")

	transport.emit(`{"event":"ready","data":{}}`)
	require.True(t, conn.WaitReady(2*time.Second))
	require.True(t, conn.Alive())
}

func TestConn_WaitReadyTimesOut(t *testing.T) {
	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, nil)
	conn.Start()

	t.Cleanup(func() {
		transport.closeOutput()
		_ = conn.Wait()
	})

	start := time.Now()
	require.False(t, conn.WaitReady(250*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestConn_EOFKillsLivenessAndFailsFast(t *testing.T) {
	transport := newFakeTransport()
	conn := NewConn(slog.Default(), transport, nil)
	conn.Start()

	transport.emit(`{"event":"ready","data":{}}`)
	require.True(t, conn.WaitReady(2*time.Second))

	// A request is in flight when the bridge stdout closes.
	ctx, cancel := context.WithCancel(context.Background())
	inFlight := make(chan error, 1)

	go func() {
		_, err := conn.Call(ctx, "sendMessage", map[string]any{})
		inFlight <- err
	}()

	transport.nextWrite(t)

	transport.closeOutput()
	require.NoError(t, conn.Wait())

	require.False(t, transport.Alive(), "EOF must drop the input handle")
	require.False(t, conn.Alive())

	// Subsequent calls fail fast without writing anything.
	before := len(transport.wrote)
	_, err := conn.Call(context.Background(), "listProviders", map[string]any{})
	require.ErrorIs(t, err, errors.ErrNotRunning)
	require.Len(t, transport.wrote, before)

	// The in-flight caller is released only by its own context.
	cancel()
	require.ErrorIs(t, <-inFlight, context.Canceled)
}

func TestConn_AbandonedCallerDiscardsLateResponse(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		_, err := conn.Call(ctx, "checkAuth", map[string]any{})
		done <- err
	}()

	req := transport.nextWrite(t)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The late response finds no receiver; delivery is a safe no-op and
	// the entry is removed.
	transport.emit(fmt.Sprintf(`{"id":%d,"result":{}}`, req.ID))

	require.Eventually(t, func() bool {
		conn.pendingMu.Lock()
		defer conn.pendingMu.Unlock()

		return len(conn.pending) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// recordingSink captures forwarded events.
type recordingSink struct {
	mu     sync.Mutex
	events []StreamRecord
}

type StreamRecord struct {
	Channel string
	Data    string
}

func (s *recordingSink) Emit(channel string, data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, StreamRecord{Channel: channel, Data: string(data)})
}

func (s *recordingSink) snapshot() []StreamRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]StreamRecord(nil), s.events...)
}

func TestConn_MessageEventsForwardedToSink(t *testing.T) {
	sink := &recordingSink{}
	_, transport := newReadyConn(t, sink)

	transport.emit(`{"event":"message","data":{"type":"text","content":"hi"}}`)
	transport.emit(`{"event":"message","data":{"type":"done"}}`)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	events := sink.snapshot()
	require.Equal(t, MessageStreamChannel, events[0].Channel)
	require.JSONEq(t, `{"type":"text","content":"hi"}`, events[0].Data)
	require.JSONEq(t, `{"type":"done"}`, events[1].Data)
}

func TestConn_StderrRelayIsolatedFromRegistry(t *testing.T) {
	conn, transport := newReadyConn(t, nil)

	_, _ = transport.errW.Write([]byte("some diagnostic\n\nanother line\n"))

	// Stderr traffic must not disturb requests in any way.
	done := make(chan error, 1)

	go func() {
		_, err := conn.Call(context.Background(), "listProviders", map[string]any{})
		done <- err
	}()

	req := transport.nextWrite(t)
	transport.emit(fmt.Sprintf(`{"id":%d,"result":{}}`, req.ID))

	require.NoError(t, <-done)
}
