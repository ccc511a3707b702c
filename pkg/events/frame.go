package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// TimestampField is the key the dispatcher adds to every outgoing payload.
const TimestampField = "timestamp"

// ErrEmptyEvent is returned when a frame carries no event name.
var ErrEmptyEvent = errors.New("frame has no event name")

// Frame is the wire envelope in both directions.
type Frame struct {
	Event Name            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode renders a server event. The payload's fields are flattened into data
// and the timestamp is added next to them.
func Encode(name Name, p Payload, ts time.Time) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyEvent
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("payload of %s is not an object: %w", name, err)
	}
	stamp, err := json.Marshal(ts.UTC())
	if err != nil {
		return nil, err
	}
	fields[TimestampField] = stamp

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: name, Data: data})
}

// EncodeRequest renders a client request. Requests are not timestamped.
func EncodeRequest(name Name, body any) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyEvent
	}
	f := Frame{Event: name}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", name, err)
		}
		f.Data = data
	}
	return json.Marshal(f)
}

// DecodeFrame parses a wire envelope.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, ErrEmptyEvent
	}
	return f, nil
}

// Decode unmarshals the frame's data into v.
func (f Frame) Decode(v any) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%s: empty data", f.Event)
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("%s: %w", f.Event, err)
	}
	return nil
}

// Timestamp returns the dispatcher timestamp carried in data, if any.
func (f Frame) Timestamp() (time.Time, bool) {
	var stamped struct {
		Timestamp *time.Time `json:"timestamp"`
	}
	if len(f.Data) == 0 || json.Unmarshal(f.Data, &stamped) != nil || stamped.Timestamp == nil {
		return time.Time{}, false
	}
	return *stamped.Timestamp, true
}
