package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wagiedev/provider-bridge-go/internal/errors"
)

// Event names the bridge service is known to emit.
const (
	// EventReady is sent once by the bridge when it has finished initializing.
	EventReady = "ready"

	// EventMessage carries incremental provider output for the UI layer.
	EventMessage = "message"
)

// MessageStreamChannel is the fixed channel name that message events are
// forwarded under.
const MessageStreamChannel = "message-stream"

// Request is one outbound frame sent to the bridge service.
//
// Wire format (one line, newline-terminated):
//
//	{"id":1,"method":"listProviders","params":{}}
type Request struct {
	// ID uniquely identifies this request for response correlation.
	ID uint64 `json:"id"`

	// Method is the bridge method name, e.g. "launch" or "sendMessage".
	Method string `json:"method"`

	// Params is the method parameter payload.
	Params any `json:"params"`
}

// Response is one inbound frame answering a Request with the same ID.
// Exactly one of Result and Error is meaningful; when both are absent the
// result is null.
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
}

// ResultOrNull returns the result payload, substituting JSON null when the
// bridge omitted the field.
func (r *Response) ResultOrNull() json.RawMessage {
	if r.Result == nil {
		return json.RawMessage("null")
	}

	return r.Result
}

// Event is one inbound frame not correlated to any request.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Classify parses a line from the bridge stdout into a Response or an Event.
//
// The response shape is tried first: a line with an integer "id" field is a
// response even if it also carries an "event" field. A line without an id
// but with an "event" field is an event. Anything else is unknown; callers
// log and drop it.
//
// Exactly one of the two return values is non-nil on success.
func Classify(line []byte) (*Response, *Event, error) {
	var resp struct {
		ID     *uint64         `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *string         `json:"error"`
	}

	if err := json.Unmarshal(line, &resp); err == nil && resp.ID != nil {
		return &Response{ID: *resp.ID, Result: resp.Result, Error: resp.Error}, nil, nil
	}

	var evt struct {
		Event *string         `json:"event"`
		Data  json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(line, &evt); err == nil && evt.Event != nil {
		return nil, &Event{Event: *evt.Event, Data: evt.Data}, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", errors.ErrUnknownMessage, line)
}
