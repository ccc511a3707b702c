package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EventsEmitted.WithLabelValues("content-rated", "room").Inc()
	m.Connections.Set(3)
	m.ObserveHTTP("GET", "/health", "200", 5*time.Millisecond)

	require.Equal(t, float64(1), testutil.ToFloat64(m.EventsEmitted.WithLabelValues("content-rated", "room")))
	require.Equal(t, float64(3), testutil.ToFloat64(m.Connections))
	require.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNewNop_Isolated(t *testing.T) {
	// Two instances must not collide on registration.
	require.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
