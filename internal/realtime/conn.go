package realtime

// Conn is one live transport session bound to exactly one identity.
// The websocket implementation lives in socket.go; tests use an in-memory fake.
type Conn interface {
	ID() string
	Identity() string
	// Send queues a pre-encoded frame without blocking. false means the frame was dropped.
	Send(frame []byte) bool
	Close()
}
