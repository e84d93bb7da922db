package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/middleware"
	"devmatch-service/internal/services"
	"devmatch-service/internal/telemetry"
)

// requestContext carries the request id into service calls so published
// events can be correlated with the request.
func requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), middleware.RequestID(c))
}

func audit(c *gin.Context, emitter *telemetry.AuditEmitter, text string) {
	if emitter == nil {
		return
	}
	emitter.Emit(c.Request.Context(), "INFO", text, middleware.RequestID(c), middleware.UserID(c))
}
