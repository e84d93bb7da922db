package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devmatch-service/internal/handlers"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/mocks"
	"devmatch-service/internal/models"
	"devmatch-service/internal/ratelimit"
	"devmatch-service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Nop()
}

func newTestRouter(validator *mocks.TokenValidatorMock, limiter ratelimit.Limiter, ping func(context.Context) error) (*gin.Engine, *mocks.MemoryStore) {
	store := mocks.NewMemoryStore()
	deps := Deps{
		Validator:    validator,
		Matches:      handlers.NewMatchHandler(services.NewMatchService(store, store, nil)),
		Users:        handlers.NewUserHandler(services.NewDiscoveryService(store, 2), services.NewProfileService(store, nil), nil),
		Chats:        handlers.NewChatHandler(services.NewChatService(store, store, store, nil)),
		SwipeLimiter: limiter,
		Ping:         ping,
	}
	return NewRouter(deps), store
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(new(mocks.TokenValidatorMock), nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	router, _ := newTestRouter(new(mocks.TokenValidatorMock), nil, func(context.Context) error {
		return errors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(new(mocks.TokenValidatorMock), nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devmatch_")
}

func TestAPIRequiresToken(t *testing.T) {
	router, _ := newTestRouter(new(mocks.TokenValidatorMock), nil, nil)

	for _, path := range []string{"/api/users/me", "/api/matches/my-matches", "/api/chat/my-chats"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"message":"No token, authorization denied"}`, rec.Body.String())
	}
}

func TestSwipeIsRateLimited(t *testing.T) {
	validator := new(mocks.TokenValidatorMock)
	limiter := new(mocks.LimiterMock)
	router, store := newTestRouter(validator, limiter, nil)
	me := store.AddUser(models.User{})
	other := store.AddUser(models.User{})

	validator.On("ValidateToken", mock.Anything, "good").Return(me.ID, nil)
	limiter.On("Allow", mock.Anything, me.ID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/matches/swipe",
		strings.NewReader(`{"targetUserId":"`+other.ID+`","action":"like"}`))
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, store.Matches(me.ID))
	limiter.AssertExpectations(t)
}

func TestDebugRoutesOnlyWhenEnabled(t *testing.T) {
	router, _ := newTestRouter(new(mocks.TokenValidatorMock), nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/presence", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
