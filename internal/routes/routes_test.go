package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/handlers"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/internal/realtime"
	"content-realtime-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, origins []string, ping func() error) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := testutil.NewStore()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	grants := realtime.NewGrantAuthorizer(store, time.Minute)
	hub := realtime.NewHub(realtime.HubOptions{Authorizer: grants, Metrics: m})
	tokens := auth.NewTokens("routes-test-secret", "content-platform", "content-clients", time.Hour)

	r := SetupRoutes(Deps{
		Handler:        handlers.New(store, hub, grants),
		Server:         realtime.NewServer(hub, realtime.NewHandlers(hub, store), tokens, realtime.SocketConfig{SendBuffer: 8, MaxMessageSize: 4096, WriteWait: time.Second, PongWait: time.Minute, PingInterval: 30 * time.Second}, origins),
		Verifier:       tokens,
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: origins,
		Ping:           ping,
	})
	return r, tokens
}

func TestHealth(t *testing.T) {
	r, _ := setup(t, nil, func() error { return nil })
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_DatabaseDown(t *testing.T) {
	r, _ := setup(t, nil, func() error { return errors.New("closed") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setup(t, nil, nil)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestWebsocketRouteRejectsAnonymous(t *testing.T) {
	r, _ := setup(t, nil, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes(t *testing.T) {
	r, tokens := setup(t, nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/realtime/stats", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.Generate("u1", "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/realtime/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r, _ := setup(t, []string{"https://app.example.com"}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/messages", strings.NewReader(""))
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProducerRoutesRequireProducerRole(t *testing.T) {
	r, tokens := setup(t, nil, nil)
	user, err := tokens.Generate("mallory", "mallory")
	require.NoError(t, err)
	producer, err := tokens.GenerateWithRole("billing", "billing", auth.RoleProducer)
	require.NoError(t, err)

	post := func(token, path, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	cases := map[string]string{
		"/api/events/payment-completed": `{"paymentId":"p1","userId":"alice","amount":100,"currency":"EUR"}`,
		"/api/announcements":            `{"title":"t","body":"b","level":"info"}`,
		"/api/notifications":            `{"userId":"alice","title":"hi"}`,
		"/api/rooms/content_42/grants":  `{"userIds":["mallory"]}`,
	}
	for path, body := range cases {
		require.Equal(t, http.StatusForbidden, post(user, path, body), path)
	}
	require.Equal(t, http.StatusAccepted, post(producer, "/api/events/payment-completed", cases["/api/events/payment-completed"]))
	require.Equal(t, http.StatusOK, post(producer, "/api/rooms/content_42/grants", cases["/api/rooms/content_42/grants"]))
}
