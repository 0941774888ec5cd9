package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printhub/backend/internal/interfaces/http/dto"
)

// APIKeyHeader is the header clients present their key in
const APIKeyHeader = "X-API-Key"

// APIKeyConfig holds API key middleware configuration
type APIKeyConfig struct {
	// RequireKey enables enforcement. When false the middleware is a no-op,
	// which keeps the handler chain identical across deployments.
	RequireKey bool
	// APIKey is the expected key value. Must be non-empty when RequireKey is set.
	APIKey string
}

// APIKey returns a middleware that checks the X-API-Key header against a
// configured shared secret. Comparison is constant-time.
func APIKey(cfg APIKeyConfig) gin.HandlerFunc {
	if !cfg.RequireKey {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	expected := []byte(cfg.APIKey)
	return func(c *gin.Context) {
		presented := []byte(c.GetHeader(APIKeyHeader))
		if len(presented) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized,
				"API key required",
			))
			return
		}
		if subtle.ConstantTimeCompare(expected, presented) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized,
				"Invalid API key",
			))
			return
		}
		c.Next()
	}
}
