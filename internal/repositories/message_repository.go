package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"devmatch-service/internal/models"
)

const messageColumns = `id, chat_id, sender_id, content, read, read_at, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chat models.Chat, senderID string, content string, at time.Time) (models.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message, refreshes the chat's last message and bumps
// the recipient's unread counter in one transaction.
func (r *MessageRepo) CreateMessage(ctx context.Context, chat models.Chat, senderID string, content string, at time.Time) (msg models.Message, err error) {
	recipientID, ok := chat.OtherParticipant(senderID)
	if !ok {
		return models.Message{}, fmt.Errorf("sender %s is not a participant of chat %s", senderID, chat.ID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.GetContext(ctx, &msg, `INSERT INTO messages (chat_id, sender_id, content, created_at)
        VALUES ($1, $2, $3, $4) RETURNING `+messageColumns, chat.ID, senderID, content, at); err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE chats
        SET last_message_content = $2, last_message_sender = $3, last_message_at = $4, updated_at = $4
        WHERE id = $1`, chat.ID, content, senderID, at); err != nil {
		return models.Message{}, fmt.Errorf("update last message: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO chat_unread (chat_id, user_id, count) VALUES ($1, $2, 1)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET count = chat_unread.count + 1`, chat.ID, recipientID); err != nil {
		return models.Message{}, fmt.Errorf("bump unread: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns the chat history oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY id ASC`, chatID)
	return msgs, err
}
