package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/models"
	"devmatch-service/internal/observability"
	"devmatch-service/internal/repositories"
)

// MatchService records swipes and forms matches.
type MatchService struct {
	users    repositories.UserRepository
	matches  repositories.MatchRepository
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

// NewMatchService builds a MatchService. A nil notifier disables pushes.
func NewMatchService(users repositories.UserRepository, matches repositories.MatchRepository, notifier Notifier) *MatchService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &MatchService{
		users:    users,
		matches:  matches,
		notifier: notifier,
		now:      utcNow,
		newID:    uuid.NewString,
	}
}

type matchCreatedPayload struct {
	ChatID string   `json:"chatId"`
	Users  []string `json:"users"`
}

// RecordSwipe stores a swipe from actorID toward targetID. A like answering
// an earlier like from the target creates the match and its chat.
func (s *MatchService) RecordSwipe(ctx context.Context, actorID, targetID string, action models.SwipeAction) (models.SwipeResult, error) {
	if !action.Valid() {
		return models.SwipeResult{}, apperrors.Validation("Invalid action")
	}
	if targetID == "" {
		return models.SwipeResult{}, apperrors.Validation("Target user id is required")
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return models.SwipeResult{}, apperrors.Validation("Invalid target user id")
	}
	if targetID == actorID {
		return models.SwipeResult{}, apperrors.Validation("Cannot swipe on yourself")
	}

	own, err := s.users.GetSwipes(ctx, actorID)
	if err != nil {
		return models.SwipeResult{}, apperrors.Unexpected(err)
	}
	for _, swipe := range own {
		if swipe.TargetID == targetID {
			return models.SwipeResult{}, apperrors.Conflict("Already swiped on this user")
		}
	}

	swipe := models.SwipeRecord{UserID: actorID, TargetID: targetID, Action: action, SwipedAt: s.now()}

	if action == models.SwipePass {
		if err := s.matches.CreateSwipe(ctx, swipe); err != nil {
			return models.SwipeResult{}, swipeError(err)
		}
		observability.IncSwipe(string(action))
		return models.SwipeResult{}, nil
	}

	if _, err := s.users.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.SwipeResult{}, apperrors.NotFound("User not found")
		}
		return models.SwipeResult{}, apperrors.Unexpected(err)
	}

	// the like-back check happens inside the same transaction as the insert
	chat, err := s.matches.CreateLike(ctx, swipe, s.newID())
	if err != nil {
		return models.SwipeResult{}, swipeError(err)
	}
	observability.IncSwipe(string(action))
	if chat == nil {
		return models.SwipeResult{}, nil
	}
	observability.IncMatch()
	s.announce(ctx, *chat, actorID, targetID)

	chatID := chat.ID
	return models.SwipeResult{IsMatch: true, ChatID: &chatID}, nil
}

// ListMatches returns the profiles of everyone userID matched with.
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]models.MatchProfile, error) {
	profiles, err := s.users.GetMatchProfiles(ctx, userID)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if profiles == nil {
		profiles = []models.MatchProfile{}
	}
	return profiles, nil
}

func (s *MatchService) announce(ctx context.Context, chat models.Chat, actorID, targetID string) {
	logger.Info().Str("chat_id", chat.ID).Str("user_id", actorID).Str("match_id", targetID).Msg("match created")

	envelope := observability.NewEnvelope("match_created", matchCreatedPayload{ChatID: chat.ID, Users: chat.Participants()})
	headers := observability.BuildHeaders(requestIDFrom(ctx), "")
	if err := observability.PublishEvent(ctx, observability.RoutingMatchCreated, envelope, headers); err != nil {
		logger.Warn().Err(err).Str("chat_id", chat.ID).Msg("publish match.created failed")
	}

	s.notifier.EmitToUser(actorID, EventMatchCreated, models.MatchNotice{ChatID: chat.ID, MatchID: targetID})
	s.notifier.EmitToUser(targetID, EventMatchCreated, models.MatchNotice{ChatID: chat.ID, MatchID: actorID})
}

func swipeError(err error) error {
	if errors.Is(err, repositories.ErrSwipeExists) {
		return apperrors.Conflict("Already swiped on this user")
	}
	return apperrors.Unexpected(err)
}
