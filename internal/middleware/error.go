package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/logger"
)

// WriteError renders err as {"message": ...} with the status of its kind and
// aborts the chain. Unexpected errors are logged and hidden from the client.
func WriteError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnexpected {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", RequestID(c)).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"message": apperrors.Message(err)})
}

// ErrorHandler recovers panics and renders errors attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")
				WriteError(c, apperrors.Unexpected(fmt.Errorf("panic: %v", r)))
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			WriteError(c, c.Errors.Last().Err)
		}
	}
}
