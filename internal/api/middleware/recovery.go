package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

// RecoveryMiddleware turns handler panics into the handler's own failure response.
//
// Handlers register their failure category under utils.FailureErrorKey; without one the generic
// internal error is used. If the response is already on the wire the connection is dropped instead,
// and http.ErrAbortHandler is always passed through to net/http for that purpose.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			ctx := c.Request.Context()
			utils.LogError(ctx, "Recovered from panic", fmt.Errorf("%v", rec), utils.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})

			if c.Writer.Written() {
				c.Abort()
				panic(http.ErrAbortHandler)
			}

			appErr := utils.NewInternalError()
			if value, ok := c.Get(utils.FailureErrorKey); ok {
				if registered, ok := value.(*utils.AppError); ok {
					appErr = registered
				}
			}

			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Del("Content-Type")
			c.AbortWithStatusJSON(appErr.StatusCode, models.ErrorResponse{Error: appErr.Message})
		}()

		c.Next()
	}
}
