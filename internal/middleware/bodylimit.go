package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareshine/backend/pkg/response"
)

// BodyLimit caps request bodies at n bytes. Declared oversize bodies are
// rejected up front; others fail with *http.MaxBytesError on read.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			response.Error(c, http.StatusRequestEntityTooLarge, "request body too large", "")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
