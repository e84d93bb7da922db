package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/mocks"
	"devmatch-service/internal/models"
	"devmatch-service/internal/repositories"
)

func newMatchFixture(t *testing.T) (*MatchService, *mocks.MemoryStore, *mocks.NotifierMock, models.User, models.User) {
	t.Helper()
	store := mocks.NewMemoryStore()
	notifier := new(mocks.NotifierMock)
	svc := NewMatchService(store, store, notifier)
	a := store.AddUser(models.User{FirstName: "Ada"})
	b := store.AddUser(models.User{FirstName: "Brian"})
	return svc, store, notifier, a, b
}

func TestRecordSwipeMutualLikeCreatesOneChat(t *testing.T) {
	svc, store, notifier, a, b := newMatchFixture(t)
	notifier.On("EmitToUser", mock.Anything, EventMatchCreated, mock.Anything).Return().Twice()
	ctx := context.Background()

	first, err := svc.RecordSwipe(ctx, a.ID, b.ID, models.SwipeLike)
	require.NoError(t, err)
	assert.False(t, first.IsMatch)
	assert.Nil(t, first.ChatID)

	second, err := svc.RecordSwipe(ctx, b.ID, a.ID, models.SwipeLike)
	require.NoError(t, err)
	require.True(t, second.IsMatch)
	require.NotNil(t, second.ChatID)

	assert.Equal(t, []string{b.ID}, store.Matches(a.ID))
	assert.Equal(t, []string{a.ID}, store.Matches(b.ID))
	chats := store.ChatsBetween(a.ID, b.ID)
	require.Len(t, chats, 1)
	assert.Equal(t, *second.ChatID, chats[0].ID)

	notifier.AssertCalled(t, "EmitToUser", a.ID, EventMatchCreated, models.MatchNotice{ChatID: chats[0].ID, MatchID: b.ID})
	notifier.AssertCalled(t, "EmitToUser", b.ID, EventMatchCreated, models.MatchNotice{ChatID: chats[0].ID, MatchID: a.ID})
}

func TestRecordSwipeLikeAfterPassIsNoMatch(t *testing.T) {
	svc, store, notifier, a, b := newMatchFixture(t)
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, a.ID, b.ID, models.SwipePass)
	require.NoError(t, err)
	res, err := svc.RecordSwipe(ctx, b.ID, a.ID, models.SwipeLike)

	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Empty(t, store.Matches(a.ID))
	assert.Empty(t, store.ChatsBetween(a.ID, b.ID))
	notifier.AssertNotCalled(t, "EmitToUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeSelfIsValidation(t *testing.T) {
	svc, _, _, a, _ := newMatchFixture(t)

	for _, action := range []models.SwipeAction{models.SwipeLike, models.SwipePass} {
		_, err := svc.RecordSwipe(context.Background(), a.ID, a.ID, action)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), string(action))
	}
}

func TestRecordSwipeRejectsBadInput(t *testing.T) {
	svc, _, _, a, b := newMatchFixture(t)
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, a.ID, b.ID, models.SwipeAction("superlike"))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.RecordSwipe(ctx, a.ID, "", models.SwipeLike)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.RecordSwipe(ctx, a.ID, "not-a-uuid", models.SwipeLike)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRecordSwipeDuplicateIsConflict(t *testing.T) {
	svc, _, _, a, b := newMatchFixture(t)
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, a.ID, b.ID, models.SwipePass)
	require.NoError(t, err)

	_, err = svc.RecordSwipe(ctx, a.ID, b.ID, models.SwipeLike)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, "Already swiped on this user", apperrors.Message(err))
}

func TestRecordSwipeLikeUnknownTargetIsNotFound(t *testing.T) {
	svc, _, _, a, _ := newMatchFixture(t)

	_, err := svc.RecordSwipe(context.Background(), a.ID, uuid.NewString(), models.SwipeLike)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRecordSwipePassUnknownTargetIsStored(t *testing.T) {
	svc, store, _, a, _ := newMatchFixture(t)
	ghost := uuid.NewString()

	_, err := svc.RecordSwipe(context.Background(), a.ID, ghost, models.SwipePass)

	require.NoError(t, err)
	swipes, _ := store.GetSwipes(context.Background(), a.ID)
	require.Len(t, swipes, 1)
	assert.Equal(t, ghost, swipes[0].TargetID)
}

func TestRecordSwipeConcurrentDuplicateFromRepository(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	matches := new(mocks.MatchRepositoryMock)
	svc := NewMatchService(users, matches, nil)
	actor, target := uuid.NewString(), uuid.NewString()

	users.On("GetSwipes", mock.Anything, actor).Return([]models.SwipeRecord{}, nil)
	matches.On("CreateSwipe", mock.Anything, mock.Anything).Return(errors.New("swipe already exists")).Once()

	_, err := svc.RecordSwipe(context.Background(), actor, target, models.SwipePass)
	assert.Equal(t, apperrors.KindUnexpected, apperrors.KindOf(err))

	matches.ExpectedCalls = nil
	matches.On("CreateSwipe", mock.Anything, mock.Anything).Return(repositories.ErrSwipeExists).Once()
	_, err = svc.RecordSwipe(context.Background(), actor, target, models.SwipePass)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRecordSwipeReusesExistingChat(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	matches := new(mocks.MatchRepositoryMock)
	svc := NewMatchService(users, matches, nil)
	actor, target := uuid.NewString(), uuid.NewString()
	existing := models.Chat{ID: "existing-chat", User1ID: actor, User2ID: target}

	users.On("GetSwipes", mock.Anything, actor).Return(nil, nil)
	users.On("GetUser", mock.Anything, target).Return(models.User{ID: target}, nil)
	matches.On("CreateLike", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(&existing, nil)

	res, err := svc.RecordSwipe(context.Background(), actor, target, models.SwipeLike)

	require.NoError(t, err)
	require.NotNil(t, res.ChatID)
	assert.Equal(t, "existing-chat", *res.ChatID)
}

func TestRecordSwipeCrossingLikesFormOneMatch(t *testing.T) {
	svc, store, notifier, a, b := newMatchFixture(t)
	notifier.On("EmitToUser", mock.Anything, EventMatchCreated, mock.Anything).Return()

	// hold both likes until each has passed its own checks
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.BeforeLike(func(models.SwipeRecord) {
		arrived.Done()
		arrived.Wait()
	})

	results := make([]models.SwipeResult, 2)
	errs := make([]error, 2)
	var done sync.WaitGroup
	for i, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		done.Add(1)
		go func(i int, actor, target string) {
			defer done.Done()
			results[i], errs[i] = svc.RecordSwipe(context.Background(), actor, target, models.SwipeLike)
		}(i, pair[0], pair[1])
	}
	done.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].IsMatch, results[1].IsMatch, "exactly one like completes the match")
	assert.Equal(t, []string{b.ID}, store.Matches(a.ID))
	assert.Equal(t, []string{a.ID}, store.Matches(b.ID))
	assert.Len(t, store.ChatsBetween(a.ID, b.ID), 1)
}

func TestRecordSwipeLikeWithoutLikeBackIsNoMatch(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	matches := new(mocks.MatchRepositoryMock)
	svc := NewMatchService(users, matches, nil)
	actor, target := uuid.NewString(), uuid.NewString()

	users.On("GetSwipes", mock.Anything, actor).Return(nil, nil)
	users.On("GetUser", mock.Anything, target).Return(models.User{ID: target}, nil)
	matches.On("CreateLike", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	res, err := svc.RecordSwipe(context.Background(), actor, target, models.SwipeLike)

	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Nil(t, res.ChatID)
	matches.AssertNotCalled(t, "CreateSwipe", mock.Anything, mock.Anything)
}

func TestListMatchesNeverNil(t *testing.T) {
	svc, _, _, a, _ := newMatchFixture(t)

	profiles, err := svc.ListMatches(context.Background(), a.ID)

	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}
