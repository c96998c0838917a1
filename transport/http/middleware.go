package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/service"
)

const (
	claimsKey       = "claims"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// AuthMiddleware creates middleware that validates bearer tokens
func AuthMiddleware(authService *service.AuthService, m *metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.Authenticate(c.GetHeader("Authorization"))
		m.observeVerification(err)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(claimsKey, claims)

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware
func ClaimsFromContext(c *gin.Context) (*core.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*core.Claims)
	return claims, ok
}

// RequestID propagates X-Request-ID, generating one when the client sent none
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}

// AccessLog logs one line per request
func AccessLog(logger log.Logger) gin.HandlerFunc {
	logger = log.With(logger, "component", "transport/http")
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		level.Info(logger).Log(
			"msg", "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request", c.GetString(requestIDKey),
		)
	}
}
