package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/layer-3/warden/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Options configures the HTTP boundary
type Options struct {
	Logger    log.Logger
	Registry  *prometheus.Registry
	StaticDir string // served for unknown routes when set
}

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(opts.Logger))

	m := newMetrics(opts.Registry)
	handlers := NewAuthHandlers(authService, m)

	router.GET("/public", handlers.Public)
	router.GET("/test", handlers.Test)
	router.POST("/login", handlers.Login)
	router.GET("/private", AuthMiddleware(authService, m), handlers.Private)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	if opts.StaticDir != "" {
		router.NoRoute(staticFiles(opts.StaticDir))
	}

	return router
}

// WithCORS wraps handler with the CORS policy for the given origins
func WithCORS(handler http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Accept", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)
}
