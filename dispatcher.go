package bridge

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// subscriberBufferSize is the per-subscriber event buffer. A subscriber
// that falls this far behind starts losing events rather than blocking
// the stdout demultiplexer.
const subscriberBufferSize = 64

// StreamEvent is one forwarded bridge event as seen by a subscriber.
type StreamEvent struct {
	// Channel is the fixed channel name, e.g. MessageStreamChannel.
	Channel string

	// Data is the event payload, forwarded verbatim.
	Data json.RawMessage
}

// Dispatcher fans forwarded bridge events out to any number of
// subscribers. It implements EventSink and is safe for concurrent use.
//
// Delivery is best-effort per subscriber: Emit never blocks, so a slow
// subscriber drops events instead of stalling the reader loop.
type Dispatcher struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]chan StreamEvent
}

// Compile-time verification that Dispatcher implements EventSink.
var _ EventSink = (*Dispatcher)(nil)

// NewDispatcher creates an empty dispatcher. The logger may be nil.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = NopLogger()
	}

	return &Dispatcher{
		log:  log.With("component", "dispatcher"),
		subs: make(map[string]chan StreamEvent),
	}
}

// Emit delivers an event to every current subscriber.
func (d *Dispatcher) Emit(channel string, data json.RawMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for token, ch := range d.subs {
		select {
		case ch <- StreamEvent{Channel: channel, Data: data}:
		default:
			d.log.Warn("subscriber too slow, dropping event", "token", token, "channel", channel)
		}
	}
}

// Subscribe registers a new subscriber and returns its token and event
// channel. The channel is closed by Unsubscribe.
func (d *Dispatcher) Subscribe() (string, <-chan StreamEvent) {
	token := ulid.Make().String()
	ch := make(chan StreamEvent, subscriberBufferSize)

	d.mu.Lock()
	d.subs[token] = ch
	d.mu.Unlock()

	d.log.Debug("subscriber added", "token", token)

	return token, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown tokens
// are a no-op.
func (d *Dispatcher) Unsubscribe(token string) {
	d.mu.Lock()

	ch, ok := d.subs[token]
	if ok {
		delete(d.subs, token)
	}

	d.mu.Unlock()

	if ok {
		close(ch)

		d.log.Debug("subscriber removed", "token", token)
	}
}
