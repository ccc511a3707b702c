package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/config"
	"content-realtime-api/internal/database"
	"content-realtime-api/internal/handlers"
	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/internal/realtime"
	"content-realtime-api/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	gormLevel := logger.Warn
	if cfg.Log.Level == "debug" {
		gormLevel = logger.Info
	}
	db, err := database.Open(cfg.Database.Path, gormLevel)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	store := database.NewStore(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	grants := realtime.NewGrantAuthorizer(store, cfg.Realtime.GrantCacheTTL)
	hub := realtime.NewHub(realtime.HubOptions{Authorizer: grants, Metrics: m, Presence: true})
	wsServer := realtime.NewServer(hub, realtime.NewHandlers(hub, store), tokens, realtime.SocketConfig{
		SendBuffer:     cfg.Realtime.SendBuffer,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
		WriteWait:      cfg.Realtime.WriteWait,
		PongWait:       cfg.Realtime.PongWait,
		PingInterval:   cfg.Realtime.PingInterval,
	}, cfg.Server.AllowedOrigins)

	router := routes.SetupRoutes(routes.Deps{
		Handler:        handlers.New(store, hub, grants),
		Server:         wsServer,
		Verifier:       tokens,
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ping:           sqlDB.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go grants.Sweep(ctx, cfg.Realtime.GrantCacheTTL)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("http shutdown incomplete")
	}
	// Hijacked websocket connections are not tracked by http.Server.
	wsServer.Shutdown()
	logging.Info().Msg("server stopped")
	return nil
}
