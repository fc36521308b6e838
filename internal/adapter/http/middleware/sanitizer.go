package middleware

import (
	"net/http"

	"zold-node/pkg/apperror"
	"zold-node/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize limits the request body size. Requests that declare a larger
// Content-Length are rejected up front; otherwise the reader fails once the
// limit is crossed and the handler maps that to 413.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrPayloadTooLarge())
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
