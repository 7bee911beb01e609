// Package server assembles the HTTP router, middleware chain, and routes.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	chathandler "gemini-chat/backend/internal/chat/handler"
	healthhandler "gemini-chat/backend/internal/health/handler"
	identityhandler "gemini-chat/backend/internal/identity/handler"
	"gemini-chat/backend/internal/security"
	"gemini-chat/backend/internal/server/middleware"
)

// Options carries the router's dependencies.
type Options struct {
	CORSOrigin string
	Tokens     *security.TokenProvider
	Auth       *identityhandler.Handler
	Chat       *chathandler.Handler
	Logger     *slog.Logger
}

// New builds the gin engine: recovery, request IDs, tracing, request logging,
// single-origin CORS, public auth/health routes, and the guarded chat route.
func New(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware("gemini-chat"))
	if opts.Logger != nil {
		router.Use(requestLogger(opts.Logger))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	api := router.Group("/api")

	opts.Auth.RegisterRoutes(api)
	healthhandler.NewHandler().RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(opts.Tokens))
	opts.Chat.RegisterRoutes(protected)

	return router
}

// requestLogger logs one structured line per request. Bodies are never logged;
// they can carry passwords and tokens.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.RequestIDFromContext(c),
		)
	}
}
