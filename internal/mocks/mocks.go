package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"devmatch-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetSwipes(ctx context.Context, userID string) ([]models.SwipeRecord, error) {
	args := m.Called(ctx, userID)
	var swipes []models.SwipeRecord
	if val := args.Get(0); val != nil {
		swipes = val.([]models.SwipeRecord)
	}
	return swipes, args.Error(1)
}

func (m *UserRepositoryMock) GetMatchProfiles(ctx context.Context, userID string) ([]models.MatchProfile, error) {
	args := m.Called(ctx, userID)
	var profiles []models.MatchProfile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.MatchProfile)
	}
	return profiles, args.Error(1)
}

func (m *UserRepositoryMock) GetParticipants(ctx context.Context, userIDs []string) ([]models.ParticipantView, error) {
	args := m.Called(ctx, userIDs)
	var views []models.ParticipantView
	if val := args.Get(0); val != nil {
		views = val.([]models.ParticipantView)
	}
	return views, args.Error(1)
}

func (m *UserRepositoryMock) FindCandidates(ctx context.Context, userID string, filter models.CandidateFilter, limit int) ([]models.Candidate, error) {
	args := m.Called(ctx, userID, filter, limit)
	var candidates []models.Candidate
	if val := args.Get(0); val != nil {
		candidates = val.([]models.Candidate)
	}
	return candidates, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	args := m.Called(ctx, userID, update)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetProfilePicture(ctx context.Context, userID string, url string) (models.User, error) {
	args := m.Called(ctx, userID, url)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetOnlineStatus(ctx context.Context, userID string, online bool, at time.Time) error {
	args := m.Called(ctx, userID, online, at)
	return args.Error(0)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) CreateSwipe(ctx context.Context, swipe models.SwipeRecord) error {
	args := m.Called(ctx, swipe)
	return args.Error(0)
}

func (m *MatchRepositoryMock) CreateLike(ctx context.Context, swipe models.SwipeRecord, chatID string) (*models.Chat, error) {
	args := m.Called(ctx, swipe, chatID)
	var chat *models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(*models.Chat)
	}
	return chat, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID string) ([]models.ChatListing, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatListing
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatListing)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) MarkRead(ctx context.Context, chatID string, readerID string, at time.Time) error {
	args := m.Called(ctx, chatID, readerID, at)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chat models.Chat, senderID string, content string, at time.Time) (models.Message, error) {
	args := m.Called(ctx, chat, senderID, content, at)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type TokenValidatorMock struct {
	mock.Mock
}

func (m *TokenValidatorMock) ValidateToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) EmitToUser(userID string, event string, data any) {
	m.Called(userID, event, data)
}

func (m *NotifierMock) EmitToRoom(room string, exceptUserID string, event string, data any) {
	m.Called(room, exceptUserID, event, data)
}

type ImageStoreMock struct {
	mock.Mock
}

func (m *ImageStoreMock) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

type LimiterMock struct {
	mock.Mock
}

func (m *LimiterMock) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
