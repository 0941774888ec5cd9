package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printhub/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body size. Uploads are the only large bodies
// this API accepts, so oversized requests are reported with the same wire
// code the upload handler uses for files over the ceiling.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeFileTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		// Content-Length is advisory; the limited reader enforces the cap
		// for chunked and lying clients.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
