package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"devmatch-service/internal/auth"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/middleware"
	"devmatch-service/internal/models"
	"devmatch-service/internal/observability"
)

// MessageSender persists a chat message and delivers it to the room.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, userID, content string) (models.MessageView, error)
}

// PresenceStore persists the online flag of a user.
type PresenceStore interface {
	SetOnlineStatus(ctx context.Context, userID string, online bool) error
}

// Handler upgrades authenticated requests to websocket connections.
type Handler struct {
	hub       *Hub
	validator auth.TokenValidator
	messages  MessageSender
	presence  PresenceStore
	upgrader  websocket.Upgrader
}

// NewHandler constructs a Handler. An empty allowedOrigins accepts any origin.
func NewHandler(hub *Hub, validator auth.TokenValidator, messages MessageSender, presence PresenceStore, allowedOrigins []string) *Handler {
	return &Handler{
		hub:       hub,
		validator: validator,
		messages:  messages,
		presence:  presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Handle authenticates the request, upgrades it and runs the connection.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("devmatch/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error"})
		return
	}
	userID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	info := newConnInfo(c, userID, span.SpanContext().TraceID().String())
	client := newClient(conn, info)

	// The connection outlives the handshake request.
	go h.run(context.WithoutCancel(ctx), client)
}

func (h *Handler) run(ctx context.Context, client *Client) {
	h.connect(ctx, client)
	go client.writePump()

	err := client.readPump(func(raw []byte) {
		h.dispatch(ctx, client, raw)
	})

	reason := client.reason()
	if reason == "" && err != nil {
		reason = err.Error()
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			observability.IncWSEvent("ws_error")
		}
	}
	client.close(reason)
	h.disconnect(ctx, client, reason)
}

func (h *Handler) connect(ctx context.Context, client *Client) {
	userID := client.info.UserID
	if err := h.presence.SetOnlineStatus(ctx, userID, true); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("persist online status failed")
	}

	if previous := h.hub.Register(client); previous != nil {
		previous.close("replaced by new connection")
	}
	h.hub.Join(userID, client)
	h.hub.Broadcast(userID, EventUserOnline, models.PresenceNotice{UserID: userID, LastSeen: client.info.ConnectedAt.UTC()})

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishPresence(ctx, observability.RoutingPresenceOnline, "ws_connect", client, "")
	logger.Info().Str("user_id", userID).Str("conn_id", client.info.ConnID).Msg("websocket connected")
}

func (h *Handler) disconnect(ctx context.Context, client *Client, reason string) {
	userID := client.info.UserID
	observability.DecWSActive()
	observability.IncWSEvent("ws_disconnect")

	if !h.hub.Unregister(client) {
		logger.Debug().Str("user_id", userID).Str("conn_id", client.info.ConnID).Msg("stale websocket closed")
		return
	}

	now := time.Now().UTC()
	if err := h.presence.SetOnlineStatus(ctx, userID, false); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("persist offline status failed")
	}
	h.hub.Broadcast(userID, EventUserOffline, models.PresenceNotice{UserID: userID, LastSeen: now})
	h.publishPresence(ctx, observability.RoutingPresenceOffline, "ws_disconnect", client, reason)
	logger.Info().Str("user_id", userID).Str("conn_id", client.info.ConnID).Str("reason", reason).Msg("websocket disconnected")
}

func (h *Handler) publishPresence(ctx context.Context, routingKey, eventName string, client *Client, reason string) {
	info := client.info
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       eventName,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"client_id": info.ClientID,
			"ip":        info.IP,
		},
	}
	envelope := observability.NewEnvelope(eventName, payload)
	envelope.EventType = "ws_events"
	if err := observability.PublishEvent(ctx, routingKey, envelope, observability.BuildHeaders(info.RequestID, info.TraceID)); err != nil {
		logger.Warn().Err(err).Str("routing_key", routingKey).Msg("publish presence event failed")
	}
}
