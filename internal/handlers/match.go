package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/middleware"
	"devmatch-service/internal/models"
	"devmatch-service/internal/services"
)

// MatchHandler serves swipe and match endpoints.
type MatchHandler struct {
	matches *services.MatchService
}

func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

type swipeRequest struct {
	TargetUserID string `json:"targetUserId"`
	Action       string `json:"action"`
}

// Swipe records a like or pass on another user.
func (h *MatchHandler) Swipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, bindError(err))
		return
	}

	result, err := h.matches.RecordSwipe(requestContext(c), middleware.UserID(c), req.TargetUserID, models.SwipeAction(req.Action))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	message := "Swipe recorded"
	if result.IsMatch {
		message = "It's a match!"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"isMatch": result.IsMatch,
		"chatId":  result.ChatID,
	})
}

// MyMatches lists the caller's matches.
func (h *MatchHandler) MyMatches(c *gin.Context) {
	profiles, err := h.matches.ListMatches(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
