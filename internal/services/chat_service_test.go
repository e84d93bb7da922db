package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/mocks"
	"devmatch-service/internal/models"
)

type chatFixture struct {
	svc      *ChatService
	store    *mocks.MemoryStore
	notifier *mocks.NotifierMock
	a, b     models.User
	chatID   string
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	store := mocks.NewMemoryStore()
	notifier := new(mocks.NotifierMock)
	notifier.On("EmitToUser", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	notifier.On("EmitToRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()

	a := store.AddUser(models.User{FirstName: "Ada", LastName: "Lovelace"})
	b := store.AddUser(models.User{FirstName: "Brian", LastName: "Kernighan"})

	matches := NewMatchService(store, store, notifier)
	_, err := matches.RecordSwipe(context.Background(), a.ID, b.ID, models.SwipeLike)
	require.NoError(t, err)
	res, err := matches.RecordSwipe(context.Background(), b.ID, a.ID, models.SwipeLike)
	require.NoError(t, err)

	return chatFixture{
		svc:      NewChatService(store, store, store, notifier),
		store:    store,
		notifier: notifier,
		a:        a,
		b:        b,
		chatID:   *res.ChatID,
	}
}

func TestSendMessageUpdatesLastMessageAndUnread(t *testing.T) {
	f := newChatFixture(t)

	view, err := f.svc.SendMessage(context.Background(), f.chatID, f.a.ID, "  hello  ")

	require.NoError(t, err)
	assert.Equal(t, "hello", view.Content)
	assert.Equal(t, f.a.ID, view.Sender.ID)
	assert.Equal(t, "Ada", view.Sender.FirstName)

	chat, err := f.store.GetChat(context.Background(), f.chatID)
	require.NoError(t, err)
	last := chat.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "hello", last.Content)
	assert.Equal(t, f.a.ID, last.Sender)
	assert.Equal(t, 1, f.store.Unread(f.chatID, f.b.ID))
	assert.Equal(t, 0, f.store.Unread(f.chatID, f.a.ID))

	f.notifier.AssertCalled(t, "EmitToRoom", f.chatID, f.a.ID, EventReceiveMessage, mock.MatchedBy(func(m models.ReceivedMessage) bool {
		return m.ChatID == f.chatID && m.Sender == f.a.ID && m.Message.Content == "hello"
	}))
}

func TestSendMessageRejectsBlankAndOversized(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.SendMessage(context.Background(), f.chatID, f.a.ID, " \n\t ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.SendMessage(context.Background(), f.chatID, f.a.ID, strings.Repeat("x", MaxMessageLength+1))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.SendMessage(context.Background(), f.chatID, f.a.ID, strings.Repeat("é", MaxMessageLength))
	assert.NoError(t, err)
}

func TestSendMessageAccessChecks(t *testing.T) {
	f := newChatFixture(t)
	outsider := f.store.AddUser(models.User{FirstName: "Eve"})

	_, err := f.svc.SendMessage(context.Background(), f.chatID, outsider.ID, "hi")
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))

	_, err = f.svc.SendMessage(context.Background(), "00000000-0000-0000-0000-000000000000", f.a.ID, "hi")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetMessagesMarksReadAndResetsCounter(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	_, err := f.svc.SendMessage(ctx, f.chatID, f.a.ID, "one")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.chatID, f.a.ID, "two")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.chatID, f.b.ID, "reply")
	require.NoError(t, err)
	require.Equal(t, 2, f.store.Unread(f.chatID, f.b.ID))

	detail, err := f.svc.GetMessages(ctx, f.chatID, f.b.ID)

	require.NoError(t, err)
	require.Len(t, detail.Messages, 3)
	assert.True(t, detail.Messages[0].Read)
	assert.NotNil(t, detail.Messages[0].ReadAt)
	assert.True(t, detail.Messages[1].Read)
	assert.False(t, detail.Messages[2].Read, "own message stays unread")
	assert.Equal(t, 0, f.store.Unread(f.chatID, f.b.ID))
	assert.Equal(t, 1, f.store.Unread(f.chatID, f.a.ID))
	assert.Equal(t, "Ada", detail.Messages[0].Sender.FirstName)
	assert.Len(t, detail.Participants, 2)
	require.NotNil(t, detail.LastMessage)
	assert.Equal(t, "reply", detail.LastMessage.Content)
}

func TestGetMessagesAccessChecks(t *testing.T) {
	f := newChatFixture(t)
	outsider := f.store.AddUser(models.User{})

	_, err := f.svc.GetMessages(context.Background(), f.chatID, outsider.ID)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))

	_, err = f.svc.GetMessages(context.Background(), "missing", f.a.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListMyChatsOrdering(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.store.AddUser(models.User{FirstName: "Carol"})
	d := f.store.AddUser(models.User{FirstName: "Dan"})
	matches := NewMatchService(f.store, f.store, nil)

	link := func(other models.User) string {
		_, err := matches.RecordSwipe(ctx, other.ID, f.a.ID, models.SwipeLike)
		require.NoError(t, err)
		res, err := matches.RecordSwipe(ctx, f.a.ID, other.ID, models.SwipeLike)
		require.NoError(t, err)
		return *res.ChatID
	}
	time.Sleep(2 * time.Millisecond)
	chatC := link(c)
	time.Sleep(2 * time.Millisecond)
	chatD := link(d)

	_, err := f.svc.SendMessage(ctx, chatC, c.ID, "hey")
	require.NoError(t, err)

	summaries, err := f.svc.ListMyChats(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, chatC, summaries[0].ID, "chat with a message first")
	assert.Equal(t, 1, summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "Carol", summaries[0].LastMessage.Sender.FirstName)
	assert.Equal(t, chatD, summaries[1].ID, "newest empty chat next")
	assert.Equal(t, f.chatID, summaries[2].ID)
	assert.Nil(t, summaries[2].LastMessage)
	assert.Len(t, summaries[2].Participants, 2)
}
