package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer abc")
	require.Equal(t, "abc", BearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/ws?token=xyz", nil)
	require.Equal(t, "xyz", BearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Basic abc")
	require.Empty(t, BearerToken(req))
}
