package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"devmatch-service/internal/models"
)

const chatColumns = `id, user1_id, user2_id, last_message_content, last_message_sender, last_message_at, created_at, updated_at`

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	GetChat(ctx context.Context, chatID string) (models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]models.ChatListing, error)
	MarkRead(ctx context.Context, chatID string, readerID string, at time.Time) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// ListChats returns the user's chats with the user's unread counter, most
// recent message first. Chats without messages come last, newest first.
func (r *ChatRepo) ListChats(ctx context.Context, userID string) ([]models.ChatListing, error) {
	query := `SELECT c.id, c.user1_id, c.user2_id, c.last_message_content, c.last_message_sender,
            c.last_message_at, c.created_at, c.updated_at, COALESCE(cu.count, 0) AS unread_count
        FROM chats c
        LEFT JOIN chat_unread cu ON cu.chat_id = c.id AND cu.user_id = $1
        WHERE c.user1_id = $1 OR c.user2_id = $1
        ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`
	chats := []models.ChatListing{}
	err := r.db.SelectContext(ctx, &chats, query, userID)
	return chats, err
}

// MarkRead marks every unread message not sent by readerID as read and
// zeroes the reader's counter.
func (r *ChatRepo) MarkRead(ctx context.Context, chatID string, readerID string, at time.Time) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE messages SET read = TRUE, read_at = $3
        WHERE chat_id = $1 AND sender_id <> $2 AND read = FALSE`, chatID, readerID, at); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE chat_unread SET count = 0 WHERE chat_id = $1 AND user_id = $2`, chatID, readerID); err != nil {
		return err
	}
	return tx.Commit()
}
