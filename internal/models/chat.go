package models

import (
	"database/sql"
	"time"
)

// Chat represents a private chat between exactly two users. Participants are
// stored ordered so that user1_id < user2_id.
type Chat struct {
	ID                 string         `db:"id" json:"id"`
	User1ID            string         `db:"user1_id" json:"-"`
	User2ID            string         `db:"user2_id" json:"-"`
	LastMessageContent sql.NullString `db:"last_message_content" json:"-"`
	LastMessageSender  sql.NullString `db:"last_message_sender" json:"-"`
	LastMessageAt      sql.NullTime   `db:"last_message_at" json:"-"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// OrderedPair returns the two ids in storage order.
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Participants returns both participant ids.
func (c Chat) Participants() []string {
	return []string{c.User1ID, c.User2ID}
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c Chat) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case c.User1ID:
		return c.User2ID, true
	case c.User2ID:
		return c.User1ID, true
	}
	return "", false
}

// LastMessage returns the denormalized summary, or nil before the first message.
func (c Chat) LastMessage() *LastMessage {
	if !c.LastMessageAt.Valid {
		return nil
	}
	return &LastMessage{
		Content:   c.LastMessageContent.String,
		Sender:    c.LastMessageSender.String,
		Timestamp: c.LastMessageAt.Time,
	}
}

// LastMessage summarizes the most recent message of a chat.
type LastMessage struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatListing is a chat row joined with the caller's unread counter.
type ChatListing struct {
	Chat
	UnreadCount int `db:"unread_count"`
}

// LastMessageView is the summary with the sender resolved for display.
type LastMessageView struct {
	Content   string     `json:"content"`
	Sender    SenderView `json:"sender"`
	Timestamp time.Time  `json:"timestamp"`
}

// ChatSummary is one entry of the caller's chat list.
type ChatSummary struct {
	ID           string            `json:"id"`
	Participants []ParticipantView `json:"participants"`
	LastMessage  *LastMessageView  `json:"lastMessage"`
	UnreadCount  int               `json:"unreadCount"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ChatDetail is a chat with its full message history.
type ChatDetail struct {
	ID           string            `json:"id"`
	Participants []ParticipantView `json:"participants"`
	Messages     []MessageView     `json:"messages"`
	LastMessage  *LastMessageView  `json:"lastMessage"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
