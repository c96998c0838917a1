package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/warden/core"
)

type errorResponse struct {
	err     error
	status  int
	message string
}

// errorResponses maps each authentication error to the response the client sees
var errorResponses = []errorResponse{
	{core.ErrMissingCredentials, http.StatusBadRequest, "Missing credentials"},
	{core.ErrWrongCredentials, http.StatusUnauthorized, "Wrong credentials"},
	{core.ErrTokenCreation, http.StatusInternalServerError, "Token creation error"},
	{core.ErrInvalidToken, http.StatusBadRequest, "Invalid token"},
}

// internalError is used for anything outside the taxonomy
var internalError = errorResponse{nil, http.StatusInternalServerError, "Token creation error"}

func responseFor(err error) errorResponse {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return r
		}
	}
	return internalError
}

// abortWithError renders err as {"error": message}; wrapped detail is never exposed
func abortWithError(c *gin.Context, err error) {
	r := responseFor(err)
	c.AbortWithStatusJSON(r.status, gin.H{"error": r.message})
}
