package testutil

import (
	"sync"

	"content-realtime-api/pkg/events"
)

// RecordingConn is an in-memory realtime connection that keeps every frame it is sent.
type RecordingConn struct {
	id       string
	identity string

	mu     sync.Mutex
	frames []events.Frame
	closed bool
}

func NewRecordingConn(id, identity string) *RecordingConn {
	return &RecordingConn{id: id, identity: identity}
}

func (c *RecordingConn) ID() string       { return c.id }
func (c *RecordingConn) Identity() string { return c.identity }

func (c *RecordingConn) Send(frame []byte) bool {
	f, err := events.DecodeFrame(frame)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.frames = append(c.frames, f)
	return true
}

func (c *RecordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Frames returns a copy of what the connection received.
func (c *RecordingConn) Frames() []events.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Frame(nil), c.frames...)
}

// Names lists the received event names in order.
func (c *RecordingConn) Names() []events.Name {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Name, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, f.Event)
	}
	return out
}
