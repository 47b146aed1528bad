package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareshine/backend/pkg/response"
)

// HTTPError is an error with a client-facing message and status. Err, when
// set, is the underlying cause and is only exposed outside production.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Errors renders the last error a handler attached with c.Error. The status
// is taken from an HTTPError, else from whatever the handler set with
// c.Status, else 500.
func Errors(production bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		msg := "Internal server error"
		detail := ""

		var he *HTTPError
		if errors.As(err, &he) {
			if he.Status != 0 {
				status = he.Status
			}
			msg = he.Message
			if he.Err != nil {
				detail = he.Err.Error()
			}
		} else {
			detail = err.Error()
			if status < http.StatusInternalServerError {
				msg = err.Error()
			}
		}
		if production {
			detail = ""
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.Int("status", status),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		} else {
			logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
		}
		response.Error(c, status, msg, detail)
	}
}

// NotFound is the fallback for requests that match no route.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(&HTTPError{
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("Route not found - %s %s", c.Request.Method, c.Request.URL.Path),
		})
	}
}
