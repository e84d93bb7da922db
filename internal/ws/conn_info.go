package ws

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"devmatch-service/internal/middleware"
)

// ClientIDHeader identifies the app install. Browsers cannot set headers on
// a websocket handshake, so the clientId query parameter is accepted too.
const ClientIDHeader = "X-Client-Id"

// ConnInfo describes one websocket connection for logs and presence events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	ClientID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnInfo(c *gin.Context, userID, traceID string) ConnInfo {
	clientID := c.GetHeader(ClientIDHeader)
	if clientID == "" {
		clientID = c.Query("clientId")
	}
	return ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		ClientID:    clientID,
		IP:          c.ClientIP(),
		RequestID:   middleware.RequestID(c),
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}
