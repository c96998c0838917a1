package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/service"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	metrics     *metrics
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, m *metrics) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		metrics:     m,
	}
}

// Login exchanges client credentials for a bearer token
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body carries no credentials; the service records the attempt
		req = LoginRequest{}
	}

	token, err := h.authService.Login(c.Request.Context(), req.ClientID, req.ClientSecret)
	h.metrics.observeLogin(err)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// Public is reachable without a token
func (h *AuthHandlers) Public(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the public area :)")
}

// Private echoes the caller's claims; AuthMiddleware must run first
func (h *AuthHandlers) Private(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		abortWithError(c, core.ErrInvalidToken)
		return
	}

	c.String(http.StatusOK, "Welcome to the protected area :)\nYour data:\n%s", claims)
}

// Test returns a fixed greeting
func (h *AuthHandlers) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "World"})
}

// staticFiles serves files under dir and falls back to dir/index.html
func staticFiles(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			c.File(name)
			return
		}
		c.File(index)
	}
}
