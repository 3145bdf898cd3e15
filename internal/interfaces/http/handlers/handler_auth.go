package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	httperrors "github.com/ipede/auth-hub/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// AuthHandler serves hub login and logout
type AuthHandler struct {
	authService  domain.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(authService domain.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// LoginHandler handles POST /api/auth/login and sets the session cookie
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode login request", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		var details httperrors.ValidationErrors
		if req.Email == "" {
			details.Add("email", "email is required")
		}
		if req.Password == "" {
			details.Add("password", "password is required")
		}
		httperrors.RespondWithDetails(w, domain.ErrInvalidRequest, details)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(LoginResponse{
		ExpiresIn: int64(time.Until(session.ExpiresAt).Seconds()),
	})
}

// LogoutHandler handles POST /api/auth/logout and clears the session cookie
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if cookie, err := r.Cookie(domain.SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusOK)
}
