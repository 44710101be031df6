package middleware

import (
	"net/http"

	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestSize bounds JSON bodies; device notes are the largest field.
const DefaultMaxRequestSize = 1 << 20

// RequestSizeLimitMiddleware rejects declared oversize bodies up front and
// caps the reader for chunked ones.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.CodedErrorResponse(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
