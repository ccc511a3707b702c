package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("c1", "u1")

	prev, replaced := r.Register("u1", c)
	require.Nil(t, prev)
	require.False(t, replaced)

	got, ok := r.Resolve("u1")
	require.True(t, ok)
	require.Same(t, c, got)
	require.Equal(t, 1, r.Count())
	require.Equal(t, 1, r.ConnCount())

	_, ok = r.Resolve("nobody")
	require.False(t, ok)
}

func TestRegistry_LastConnectWins(t *testing.T) {
	r := NewRegistry()
	first := newFakeConn("c1", "u1")
	second := newFakeConn("c2", "u1")

	r.Register("u1", first)
	prev, replaced := r.Register("u1", second)
	require.True(t, replaced)
	require.Same(t, first, prev)

	got, _ := r.Resolve("u1")
	require.Same(t, second, got)
	require.False(t, first.isClosed(), "overwritten transport stays open")
	require.Equal(t, 1, r.Count())
	require.Equal(t, 2, r.ConnCount())
}

func TestRegistry_StaleUnregisterKeepsSuccessor(t *testing.T) {
	r := NewRegistry()
	first := newFakeConn("c1", "u1")
	second := newFakeConn("c2", "u1")
	r.Register("u1", first)
	r.Register("u1", second)

	offline := r.Unregister("u1", first)
	require.False(t, offline)

	got, ok := r.Resolve("u1")
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, r.ConnCount())

	require.True(t, r.Unregister("u1", second))
	_, ok = r.Resolve("u1")
	require.False(t, ok)
	require.Zero(t, r.ConnCount())
}

func TestRegistry_MembershipMirror(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("c1", "u1")
	r.Register("u1", c)

	r.addMembership("u1", "content_b")
	r.addMembership("u1", "content_a")
	r.addMembership("u1", "content_a")
	require.Equal(t, []string{"content_a", "content_b"}, r.Rooms("u1"))
	require.True(t, r.IsMember("u1", "content_a"))

	r.removeMembership("u1", "content_a")
	require.False(t, r.IsMember("u1", "content_a"))

	r.Unregister("u1", c)
	require.Empty(t, r.Rooms("u1"))
}

func TestRegistry_MembershipIgnoredForUnknownIdentity(t *testing.T) {
	r := NewRegistry()
	r.addMembership("ghost", "content_1")
	require.False(t, r.IsMember("ghost", "content_1"))
	require.Empty(t, r.Identities())
}

func TestRegistry_Identities(t *testing.T) {
	r := NewRegistry()
	r.Register("u2", newFakeConn("c2", "u2"))
	r.Register("u1", newFakeConn("c1", "u1"))
	require.Equal(t, []string{"u1", "u2"}, r.Identities())
	require.Len(t, r.Connections(), 2)
}
