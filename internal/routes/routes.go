package routes

import (
	"net/http"
	"slices"
	"strings"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/handlers"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/internal/middleware"
	"content-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the constructed components the router wires together.
type Deps struct {
	Handler        *handlers.Handler
	Server         *realtime.Server
	Verifier       auth.Verifier
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// Ping reports database health for /health.
	Ping func() error
}

func cors(allowed []string) gin.HandlerFunc {
	open := len(allowed) == 0 || slices.Contains(allowed, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case open:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
			http.MethodPost, http.MethodOptions, http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch,
		}, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRoutes(d Deps) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger())
	if d.Metrics != nil {
		ginRouter.Use(middleware.Metrics(d.Metrics))
	}
	ginRouter.Use(cors(d.AllowedOrigins))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "degraded",
					"message": "database unreachable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Content realtime API is running",
		})
	})

	if d.Gatherer != nil {
		ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// The websocket route authenticates in its own handshake.
	ginRouter.GET("/ws", d.Server.HandleWS)

	// Protected routes (authentication required)
	protectedRoutes := ginRouter.Group("/api")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(d.Verifier))
	{
		protectedRoutes.POST("/messages", d.Handler.SendMessage)
		protectedRoutes.GET("/messages", d.Handler.GetConversation)

		protectedRoutes.GET("/notifications", d.Handler.ListNotifications)
		protectedRoutes.PATCH("/notifications/:id/read", d.Handler.MarkNotificationRead)

		protectedRoutes.PUT("/users/me/status", d.Handler.UpdateStatus)
		protectedRoutes.GET("/users/:id/status", d.Handler.GetStatus)

		protectedRoutes.GET("/realtime/stats", d.Handler.Stats)
	}

	// Producer routes emit on behalf of other identities; service tokens only.
	producerRoutes := protectedRoutes.Group("")
	producerRoutes.Use(middleware.RequireRole(auth.RoleProducer))
	{
		producerRoutes.POST("/notifications", d.Handler.CreateNotification)
		producerRoutes.POST("/announcements", d.Handler.Announce)
		producerRoutes.POST("/events/:event", d.Handler.PublishEvent)
		producerRoutes.POST("/rooms/:room/grants", d.Handler.GrantRoom)
	}

	return ginRouter
}
