package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/models"
	"devmatch-service/internal/observability"
	"devmatch-service/internal/repositories"
)

// MaxMessageLength is the longest message content accepted, in characters.
const MaxMessageLength = 5000

// ChatService reads and writes two-party conversations.
type ChatService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
	now      func() time.Time
}

// NewChatService builds a ChatService. A nil notifier disables broadcasts.
func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, notifier Notifier) *ChatService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ChatService{
		chats:    chats,
		messages: messages,
		users:    users,
		notifier: notifier,
		now:      utcNow,
	}
}

type messageSentPayload struct {
	ChatID      string `json:"chatId"`
	MessageID   int64  `json:"messageId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
}

// ListMyChats returns userID's chats with the caller's unread counts, most
// recently active first.
func (s *ChatService) ListMyChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	listings, err := s.chats.ListChats(ctx, userID)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	ids := make([]string, 0, len(listings)*2)
	for _, listing := range listings {
		ids = append(ids, listing.Participants()...)
	}
	people, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(listings))
	for _, listing := range listings {
		summaries = append(summaries, models.ChatSummary{
			ID:           listing.ID,
			Participants: resolve(people, listing.Participants()),
			LastMessage:  lastMessageView(listing.Chat, people),
			UnreadCount:  listing.UnreadCount,
			CreatedAt:    listing.CreatedAt,
			UpdatedAt:    listing.UpdatedAt,
		})
	}
	return summaries, nil
}

// GetMessages returns the chat history and marks everything addressed to
// userID as read.
func (s *ChatService) GetMessages(ctx context.Context, chatID, userID string) (models.ChatDetail, error) {
	chat, err := s.loadChat(ctx, chatID, userID)
	if err != nil {
		return models.ChatDetail{}, err
	}

	if err := s.chats.MarkRead(ctx, chat.ID, userID, s.now()); err != nil {
		return models.ChatDetail{}, apperrors.Unexpected(err)
	}

	msgs, err := s.messages.ListMessages(ctx, chat.ID)
	if err != nil {
		return models.ChatDetail{}, apperrors.Unexpected(err)
	}
	people, err := s.participants(ctx, chat.Participants())
	if err != nil {
		return models.ChatDetail{}, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, msg.View(senderOf(people, msg.SenderID)))
	}

	return models.ChatDetail{
		ID:           chat.ID,
		Participants: resolve(people, chat.Participants()),
		Messages:     views,
		LastMessage:  lastMessageView(chat, people),
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}, nil
}

// SendMessage stores a message from userID and delivers it to the chat room.
func (s *ChatService) SendMessage(ctx context.Context, chatID, userID, content string) (models.MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.MessageView{}, apperrors.Validation("Message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return models.MessageView{}, apperrors.Validation("Message is too long")
	}

	chat, err := s.loadChat(ctx, chatID, userID)
	if err != nil {
		return models.MessageView{}, err
	}

	msg, err := s.messages.CreateMessage(ctx, chat, userID, content, s.now())
	if err != nil {
		return models.MessageView{}, apperrors.Unexpected(err)
	}

	people, err := s.participants(ctx, []string{userID})
	if err != nil {
		return models.MessageView{}, err
	}
	view := msg.View(senderOf(people, userID))

	transport := transportFrom(ctx)
	observability.IncMessage(transport)
	s.notifier.EmitToRoom(chat.ID, userID, EventReceiveMessage, models.ReceivedMessage{
		ChatID:    chat.ID,
		Message:   view,
		Sender:    userID,
		Timestamp: msg.CreatedAt,
	})

	recipientID, _ := chat.OtherParticipant(userID)
	envelope := observability.NewEnvelope("message_sent", messageSentPayload{
		ChatID:      chat.ID,
		MessageID:   msg.ID,
		SenderID:    userID,
		RecipientID: recipientID,
	})
	if err := observability.PublishEvent(ctx, observability.RoutingMessageSent, envelope, observability.BuildHeaders(requestIDFrom(ctx), "")); err != nil {
		logger.Warn().Err(err).Str("chat_id", chat.ID).Msg("publish message.sent failed")
	}
	logger.Debug().Str("chat_id", chat.ID).Str("user_id", userID).Str("transport", transport).Msg("message stored")

	return view, nil
}

func (s *ChatService) loadChat(ctx context.Context, chatID, userID string) (models.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return models.Chat{}, apperrors.NotFound("Chat not found")
		}
		return models.Chat{}, apperrors.Unexpected(err)
	}
	if !chat.HasParticipant(userID) {
		return models.Chat{}, apperrors.Forbidden("Access denied")
	}
	return chat, nil
}

func (s *ChatService) participants(ctx context.Context, ids []string) (map[string]models.ParticipantView, error) {
	people := make(map[string]models.ParticipantView, len(ids))
	if len(ids) == 0 {
		return people, nil
	}
	views, err := s.users.GetParticipants(ctx, unique(ids))
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	for _, view := range views {
		people[view.ID] = view
	}
	return people, nil
}

// resolve keeps the order of ids; unknown users appear with only their id.
func resolve(people map[string]models.ParticipantView, ids []string) []models.ParticipantView {
	out := make([]models.ParticipantView, 0, len(ids))
	for _, id := range ids {
		view, ok := people[id]
		if !ok {
			view = models.ParticipantView{ID: id}
		}
		out = append(out, view)
	}
	return out
}

func senderOf(people map[string]models.ParticipantView, id string) models.SenderView {
	if view, ok := people[id]; ok {
		return view.Sender()
	}
	return models.SenderView{ID: id}
}

func lastMessageView(chat models.Chat, people map[string]models.ParticipantView) *models.LastMessageView {
	last := chat.LastMessage()
	if last == nil {
		return nil
	}
	return &models.LastMessageView{
		Content:   last.Content,
		Sender:    senderOf(people, last.Sender),
		Timestamp: last.Timestamp,
	}
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
