package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"devmatch-service/internal/models"
)

// MatchRepository persists swipes and match formation.
type MatchRepository interface {
	CreateSwipe(ctx context.Context, swipe models.SwipeRecord) error
	CreateLike(ctx context.Context, swipe models.SwipeRecord, chatID string) (*models.Chat, error)
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateSwipe stores a swipe that did not produce a match.
func (r *MatchRepo) CreateSwipe(ctx context.Context, swipe models.SwipeRecord) error {
	return insertSwipe(ctx, r.db, swipe)
}

// CreateLike stores a like and, when the target already liked the actor,
// both match entries and the chat, all in one transaction. Likes within a
// pair are serialized by an advisory lock so two crossing likes cannot both
// miss each other. The returned chat is nil when no match formed; if the
// pair already has a chat, that chat is returned.
func (r *MatchRepo) CreateLike(ctx context.Context, swipe models.SwipeRecord, chatID string) (chat *models.Chat, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	user1, user2 := models.OrderedPair(swipe.UserID, swipe.TargetID)
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, pairLockKey(swipe.UserID, swipe.TargetID)); err != nil {
		return nil, fmt.Errorf("lock pair: %w", err)
	}

	if err = insertSwipe(ctx, tx, swipe); err != nil {
		return nil, err
	}

	var likedBack bool
	if err = tx.GetContext(ctx, &likedBack, `SELECT EXISTS (
            SELECT 1 FROM swipes WHERE user_id=$1 AND target_id=$2 AND action='like'
        )`, swipe.TargetID, swipe.UserID); err != nil {
		return nil, fmt.Errorf("check like back: %w", err)
	}
	if !likedBack {
		if err = tx.Commit(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO matches (user_id, match_id, created_at)
        VALUES ($1, $2, $3), ($2, $1, $3)
        ON CONFLICT (user_id, match_id) DO NOTHING`, swipe.UserID, swipe.TargetID, swipe.SwipedAt); err != nil {
		return nil, fmt.Errorf("insert matches: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO chats (id, user1_id, user2_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user1_id, user2_id) DO NOTHING`, chatID, user1, user2, swipe.SwipedAt); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	var created models.Chat
	if err = tx.GetContext(ctx, &created, `SELECT `+chatColumns+` FROM chats WHERE user1_id=$1 AND user2_id=$2`, user1, user2); err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &created, nil
}

// pairLockKey names the advisory lock shared by both directions of a pair.
func pairLockKey(a, b string) string {
	user1, user2 := models.OrderedPair(a, b)
	return "swipe:" + user1 + ":" + user2
}

func insertSwipe(ctx context.Context, exec sqlx.ExecerContext, swipe models.SwipeRecord) error {
	_, err := exec.ExecContext(ctx, `INSERT INTO swipes (user_id, target_id, action, swiped_at) VALUES ($1, $2, $3, $4)`,
		swipe.UserID, swipe.TargetID, string(swipe.Action), swipe.SwipedAt)
	if isUniqueViolation(err) {
		return ErrSwipeExists
	}
	return err
}
