package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devmatch-service/internal/middleware"
	"devmatch-service/internal/services"
)

// ChatHandler manages private chat endpoints.
type ChatHandler struct {
	chats *services.ChatService
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// MyChats returns the chats of the authenticated user.
func (h *ChatHandler) MyChats(c *gin.Context) {
	chats, err := h.chats.ListMyChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetMessages returns the chat history and marks it read for the caller.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	detail, err := h.chats.GetMessages(c.Request.Context(), c.Param("chatId"), middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PostMessage stores a chat message and broadcasts it.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, bindError(err))
		return
	}

	ctx := services.WithTransport(requestContext(c), "http")
	msg, err := h.chats.SendMessage(ctx, c.Param("chatId"), middleware.UserID(c), req.Content)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
