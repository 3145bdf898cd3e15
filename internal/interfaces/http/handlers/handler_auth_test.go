package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == domain.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_LoginHandler(t *testing.T) {
	logger, _ := zap.NewProduction()

	t.Run("successful login sets the session cookie", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		now := time.Now()
		session := &domain.Session{
			ID:        "sess-1",
			Subject:   "subject-1",
			Email:     "user@example.com",
			CreatedAt: now,
			ExpiresAt: now.Add(10 * time.Minute),
		}
		authService.On("Login", mock.Anything, "user@example.com", "s3cret").Return(session, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"s3cret"}`))
		handler.LoginHandler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Equal(t, "sess-1", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.InDelta(t, 600, resp.ExpiresIn, 5)
	})

	t.Run("malformed body", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
		handler.LoginHandler(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		authService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing fields report details", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":""}`))
		handler.LoginHandler(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_request", resp["error"])
		assert.Len(t, resp["details"], 2)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		authService.On("Login", mock.Anything, "user@example.com", "wrong").
			Return(nil, domain.ErrInvalidCredentials)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"wrong"}`))
		handler.LoginHandler(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, sessionCookie(t, w))
	})
}

func TestAuthHandler_LogoutHandler(t *testing.T) {
	logger, _ := zap.NewProduction()

	t.Run("logout clears the session cookie", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		authService.On("Logout", mock.Anything, "sess-1").Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		r.AddCookie(&http.Cookie{Name: domain.SessionCookieName, Value: "sess-1"})
		handler.LogoutHandler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
		authService.AssertExpectations(t)
	})

	t.Run("logout without a cookie still succeeds", func(t *testing.T) {
		authService := new(MockAuthService)
		handler := NewAuthHandler(authService, false, logger)

		authService.On("Logout", mock.Anything, "").Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		handler.LogoutHandler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
