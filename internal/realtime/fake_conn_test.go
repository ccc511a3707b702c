package realtime

import (
	"sync"
	"testing"

	"content-realtime-api/pkg/events"

	"github.com/stretchr/testify/require"
)

// fakeConn records every frame it is sent.
type fakeConn struct {
	id       string
	identity string

	mu     sync.Mutex
	frames [][]byte
	closed bool
	full   bool
}

func newFakeConn(id, identity string) *fakeConn {
	return &fakeConn{id: id, identity: identity}
}

func (f *fakeConn) ID() string       { return f.id }
func (f *fakeConn) Identity() string { return f.identity }

func (f *fakeConn) Send(frame []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.full {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) received(t *testing.T) []events.Frame {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Frame, 0, len(f.frames))
	for _, raw := range f.frames {
		fr, err := events.DecodeFrame(raw)
		require.NoError(t, err)
		out = append(out, fr)
	}
	return out
}

func (f *fakeConn) names(t *testing.T) []events.Name {
	t.Helper()
	var out []events.Name
	for _, fr := range f.received(t) {
		out = append(out, fr.Event)
	}
	return out
}

func (f *fakeConn) last(t *testing.T) events.Frame {
	t.Helper()
	frames := f.received(t)
	require.NotEmpty(t, frames, "connection %s received nothing", f.id)
	return frames[len(frames)-1]
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}
