package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"content-realtime-api/pkg/events"
)

var errDropped = errors.New("transport dropped")

// fakeTransport delivers queued frames to ReadMessage until dropped or closed.
type fakeTransport struct {
	inbox chan []byte
	gone  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	written []events.Frame
	err     error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbox: make(chan []byte, 16), gone: make(chan struct{})}
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) {
	select {
	case raw := <-f.inbox:
		return 1, raw, nil
	case <-f.gone:
		f.mu.Lock()
		defer f.mu.Unlock()
		return 0, nil, f.err
	}
}

func (f *fakeTransport) WriteMessage(_ int, data []byte) error {
	fr, err := events.DecodeFrame(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, fr)
	return nil
}

func (f *fakeTransport) Close() error {
	f.drop(errors.New("closed"))
	return nil
}

func (f *fakeTransport) drop(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.gone)
	})
}

func (f *fakeTransport) push(raw []byte) { f.inbox <- raw }

func (f *fakeTransport) sent() []events.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Frame, len(f.written))
	copy(out, f.written)
	return out
}

// fakeDialer hands out queued transports; an empty queue fails the dial.
type fakeDialer struct {
	mu      sync.Mutex
	queue   []*fakeTransport
	dials   int
	headers []http.Header
}

func (d *fakeDialer) Dial(_ context.Context, _ string, header http.Header) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.headers = append(d.headers, header)
	if len(d.queue) == 0 {
		return nil, errors.New("connection refused")
	}
	t := d.queue[0]
	d.queue = d.queue[1:]
	return t, nil
}

func (d *fakeDialer) enqueue(t *fakeTransport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, t)
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// recordingSleep returns immediately and remembers each requested delay.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleep) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
