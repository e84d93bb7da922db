package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/middleware"
	"devmatch-service/internal/telemetry"
)

// PresenceView is the read side of the websocket presence registry.
type PresenceView interface {
	OnlineCount() int
	IsOnline(userID string) bool
}

// DebugHandler serves development-only inspection endpoints.
type DebugHandler struct {
	presence PresenceView
	audit    *telemetry.AuditEmitter
}

func NewDebugHandler(presence PresenceView, audit *telemetry.AuditEmitter) *DebugHandler {
	return &DebugHandler{presence: presence, audit: audit}
}

// Register mounts the endpoints under /debug when enabled is true.
func (h *DebugHandler) Register(router gin.IRouter, enabled bool) {
	if !enabled {
		return
	}
	debug := router.Group("/debug")
	debug.GET("/presence", h.Presence)
	debug.GET("/presence/:userId", h.UserPresence)
	debug.POST("/audit", h.Audit)
}

// Presence reports how many users hold a live socket in this process.
func (h *DebugHandler) Presence(c *gin.Context) {
	if h.presence == nil {
		c.JSON(http.StatusOK, gin.H{"online": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": h.presence.OnlineCount()})
}

// UserPresence reports whether one user is connected. Unlike the stored
// isOnline flag this reflects the registry, not the database.
func (h *DebugHandler) UserPresence(c *gin.Context) {
	userID := c.Param("userId")
	online := h.presence != nil && h.presence.IsOnline(userID)
	c.JSON(http.StatusOK, gin.H{"userId": userID, "connected": online})
}

// Audit publishes a test entry on the audit routing key.
func (h *DebugHandler) Audit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Audit publishing is not configured"})
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request body"))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = "debug audit entry"
	}
	audit(c, h.audit, text)
	c.JSON(http.StatusAccepted, gin.H{"message": "Audit entry published"})
}
