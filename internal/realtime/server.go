package realtime

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server performs the authentication handshake, upgrades the connection and
// runs its session against the hub.
type Server struct {
	hub      *Hub
	handlers *Handlers
	verifier auth.Verifier
	cfg      SocketConfig
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
	log      zerolog.Logger
}

func NewServer(hub *Hub, handlers *Handlers, verifier auth.Verifier, cfg SocketConfig, allowedOrigins []string) *Server {
	s := &Server{
		hub:      hub,
		handlers: handlers,
		verifier: verifier,
		cfg:      cfg,
		metrics:  hub.metrics,
		log:      logging.With().Str("component", "ws-server").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Handshake verifies the bearer credential and returns the identity it names.
func (s *Server) Handshake(r *http.Request) (string, error) {
	claims, err := s.verifier.Validate(auth.BearerToken(r))
	if err != nil {
		return "", err
	}
	return claims.Identity(), nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing"
	case errors.Is(err, auth.ErrInvalidIssuer), errors.Is(err, auth.ErrInvalidAudience):
		return "claims"
	default:
		return "invalid"
	}
}

// HandleWS is the gin handler for GET /ws. A failed handshake refuses the
// upgrade: nothing is registered and no event is sent.
func (s *Server) HandleWS(c *gin.Context) {
	identity, err := s.Handshake(c.Request)
	if err != nil {
		reason := rejectionReason(err)
		s.metrics.HandshakeRejections.WithLabelValues(reason).Inc()
		s.log.Warn().Err(err).Str("reason", reason).Str("remote_addr", c.ClientIP()).Msg("handshake rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", identity).Msg("websocket upgrade failed")
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	sock := newSocket(ws, identity, s.cfg, s.log)
	s.hub.Attach(sock)
	defer s.hub.Detach(sock)

	go sock.writePump()
	sock.readPump(c.Request.Context(), func(ctx context.Context, raw []byte) {
		s.handlers.Handle(ctx, sock, raw)
	})
}

// Shutdown closes every open connection and waits for their sessions to end.
func (s *Server) Shutdown() {
	n := s.hub.CloseAll()
	s.wg.Wait()
	s.log.Info().Int("closed", n).Msg("websocket sessions closed")
}
