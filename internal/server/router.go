package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"devmatch-service/internal/auth"
	"devmatch-service/internal/handlers"
	"devmatch-service/internal/middleware"
	"devmatch-service/internal/observability"
	"devmatch-service/internal/ratelimit"
	"devmatch-service/internal/telemetry"
	"devmatch-service/internal/ws"
)

const serviceName = "devmatch-service"

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Validator      auth.TokenValidator
	Matches        *handlers.MatchHandler
	Users          *handlers.UserHandler
	Chats          *handlers.ChatHandler
	Socket         *ws.Handler
	Presence       handlers.PresenceView
	SwipeLimiter   ratelimit.Limiter
	Audit          *telemetry.AuditEmitter
	AllowedOrigins []string
	Debug          bool
	// Ping checks the database for /health. Nil reports healthy.
	Ping func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.ErrorHandler(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(d.AllowedOrigins),
		otelgin.Middleware(serviceName),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/health", health(d.Ping))
	router.GET("/metrics", observability.MetricsHandler())
	if d.Socket != nil {
		router.GET("/ws", d.Socket.Handle)
	}

	authMiddleware := middleware.AuthMiddleware(d.Validator)
	api := router.Group("/api", authMiddleware)

	matches := api.Group("/matches")
	swipe := []gin.HandlerFunc{d.Matches.Swipe}
	if d.SwipeLimiter != nil {
		swipe = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(d.SwipeLimiter)}, swipe...)
	}
	matches.POST("/swipe", swipe...)
	matches.GET("/my-matches", d.Matches.MyMatches)

	users := api.Group("/users")
	users.GET("/potential-matches", d.Users.PotentialMatches)
	users.GET("/me", d.Users.Me)
	users.PUT("/profile", d.Users.UpdateProfile)
	users.POST("/upload-profile-picture", d.Users.UploadProfilePicture)
	users.PUT("/online-status", d.Users.UpdateOnlineStatus)

	chat := api.Group("/chat")
	chat.GET("/my-chats", d.Chats.MyChats)
	chat.GET("/:chatId/messages", d.Chats.GetMessages)
	chat.POST("/:chatId/messages", d.Chats.PostMessage)

	handlers.NewDebugHandler(d.Presence, d.Audit).Register(router, d.Debug)

	return router
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "DevMatch API is running"})
	}
}
