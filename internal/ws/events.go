package ws

import (
	"bytes"
	"context"
	"encoding/json"

	"devmatch-service/internal/logger"
	"devmatch-service/internal/models"
	"devmatch-service/internal/observability"
	"devmatch-service/internal/services"
)

// Client to server events.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
)

// Server to client events.
const (
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventUserOnline     = "user_online"
	EventUserOffline    = "user_offline"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chatPayload struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	Message string `json:"message"`
}

// dispatch handles one inbound frame. Failures are logged; nothing is sent
// back to the client.
func (h *Handler) dispatch(ctx context.Context, client *Client, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Debug().Err(err).Str("conn_id", client.info.ConnID).Msg("malformed websocket frame")
		return
	}
	payload, err := decodePayload(frame)
	if err != nil {
		logger.Debug().Err(err).Str("event", frame.Event).Msg("malformed websocket payload")
		return
	}
	if payload.ChatID == "" {
		logger.Debug().Str("event", frame.Event).Str("user_id", client.info.UserID).Msg("websocket event without chatId")
		return
	}

	userID := client.info.UserID
	switch frame.Event {
	case EventJoinChat:
		h.hub.Join(payload.ChatID, client)
	case EventLeaveChat:
		h.hub.Leave(payload.ChatID, client)
	case EventSendMessage:
		content := payload.Content
		if content == "" {
			content = payload.Message
		}
		sendCtx := services.WithRequestID(services.WithTransport(ctx, "ws"), client.info.RequestID)
		if _, err := h.messages.SendMessage(sendCtx, payload.ChatID, userID, content); err != nil {
			logger.Warn().Err(err).Str("chat_id", payload.ChatID).Str("user_id", userID).Msg("websocket send_message failed")
			return
		}
	case EventTypingStart:
		h.hub.EmitToRoom(payload.ChatID, userID, EventUserTyping, models.TypingNotice{UserID: userID, ChatID: payload.ChatID})
	case EventTypingStop:
		h.hub.EmitToRoom(payload.ChatID, userID, EventUserStopTyping, models.TypingNotice{UserID: userID, ChatID: payload.ChatID})
	default:
		logger.Debug().Str("event", frame.Event).Msg("unknown websocket event")
		return
	}
	observability.IncWSEvent(frame.Event)
}

// decodePayload reads the event data. join_chat and leave_chat also accept
// the chat id as a bare string.
func decodePayload(frame inboundFrame) (chatPayload, error) {
	var payload chatPayload
	data := bytes.TrimSpace(frame.Data)
	if len(data) == 0 {
		return payload, nil
	}
	if data[0] == '"' && (frame.Event == EventJoinChat || frame.Event == EventLeaveChat) {
		err := json.Unmarshal(data, &payload.ChatID)
		return payload, err
	}
	err := json.Unmarshal(data, &payload)
	return payload, err
}
