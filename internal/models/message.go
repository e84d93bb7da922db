package models

import "time"

// Message represents a chat message.
type Message struct {
	ID        int64      `db:"id" json:"id"`
	ChatID    string     `db:"chat_id" json:"chatId"`
	SenderID  string     `db:"sender_id" json:"sender"`
	Content   string     `db:"content" json:"content"`
	Read      bool       `db:"read" json:"read"`
	ReadAt    *time.Time `db:"read_at" json:"readAt"`
	CreatedAt time.Time  `db:"created_at" json:"timestamp"`
}

// MessageView is a message with its sender resolved for display.
type MessageView struct {
	ID        int64      `json:"id"`
	ChatID    string     `json:"chatId"`
	Sender    SenderView `json:"sender"`
	Content   string     `json:"content"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt"`
	Timestamp time.Time  `json:"timestamp"`
}

// View attaches the resolved sender to the message.
func (m Message) View(sender SenderView) MessageView {
	return MessageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Sender:    sender,
		Content:   m.Content,
		Read:      m.Read,
		ReadAt:    m.ReadAt,
		Timestamp: m.CreatedAt,
	}
}

// SocketEvent is the frame exchanged over websocket connections.
type SocketEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ReceivedMessage is pushed to chat rooms when a message is stored.
type ReceivedMessage struct {
	ChatID    string      `json:"chatId"`
	Message   MessageView `json:"message"`
	Sender    string      `json:"sender"`
	Timestamp time.Time   `json:"timestamp"`
}

// TypingNotice is relayed to chat rooms for typing indicators.
type TypingNotice struct {
	UserID string `json:"userId"`
	ChatID string `json:"chatId"`
}

// PresenceNotice announces a user going online or offline.
type PresenceNotice struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// MatchNotice is pushed to both users when a match forms.
type MatchNotice struct {
	ChatID  string `json:"chatId"`
	MatchID string `json:"matchId"`
}
