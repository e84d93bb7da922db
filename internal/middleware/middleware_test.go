package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/auth"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Nop()
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "abc", "Basic abc", "Bearer ", "Bearer"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestAuthMiddleware(t *testing.T) {
	validator := new(mocks.TokenValidatorMock)
	validator.On("ValidateToken", mock.Anything, "good").Return("user-1", nil)
	validator.On("ValidateToken", mock.Anything, "bad").Return("", auth.ErrInvalidToken)

	router := gin.New()
	router.GET("/me", AuthMiddleware(validator), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"Bearer good", http.StatusOK, "user-1"},
		{"Bearer bad", http.StatusUnauthorized, `{"message":"Token is not valid"}`},
		{"", http.StatusUnauthorized, `{"message":"No token, authorization denied"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code, tc.header)
		assert.Equal(t, tc.body, w.Body.String(), tc.header)
	}
}

func TestErrorHandlerRendersKinds(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandler())
	router.GET("/conflict", func(c *gin.Context) { _ = c.Error(apperrors.Conflict("Already swiped on this user")) })
	router.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })
	router.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Already swiped on this user"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := new(mocks.LimiterMock)
	limiter.On("Allow", mock.Anything, "user-1").Return(true, nil).Once()
	limiter.On("Allow", mock.Anything, "user-1").Return(false, nil).Once()
	limiter.On("Allow", mock.Anything, "user-1").Return(false, errors.New("redis down")).Once()

	router := gin.New()
	router.POST("/swipe", func(c *gin.Context) { c.Set(UserIDKey, "user-1") }, RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	statuses := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/swipe", nil))
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusOK}, statuses)
	limiter.AssertExpectations(t)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background()))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSMiddlewareWithoutOriginsAllowsAny(t *testing.T) {
	assert.NotPanics(t, func() { CORSMiddleware(nil) })
}
