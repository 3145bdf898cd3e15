package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	httperrors "github.com/ipede/auth-hub/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// Middleware resolves the hub login session from the auth_session cookie or
// a bearer header and attaches it to the request context.
type Middleware struct {
	store  domain.SessionStore
	logger *zap.Logger
}

func NewMiddleware(store domain.SessionStore, logger *zap.Logger) *Middleware {
	return &Middleware{store: store, logger: logger}
}

// RequireSession rejects requests without a valid, unexpired session
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := extractSessionID(r)
		if sessionID == "" {
			httperrors.RespondWithError(w, domain.ErrAuthenticationRequired)
			return
		}

		session, err := m.store.Get(r.Context(), sessionID)
		if err != nil {
			m.logger.Debug("Session lookup failed", zap.Error(err))
			httperrors.RespondWithError(w, domain.ErrAuthenticationRequired)
			return
		}

		if session.Expired(time.Now()) {
			httperrors.RespondWithError(w, domain.ErrAuthenticationRequired)
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithSession(r.Context(), session)))
	})
}

// extractSessionID reads the session cookie, falling back to a bearer
// Authorization header for deployments that proxy the cookie away.
func extractSessionID(r *http.Request) string {
	if cookie, err := r.Cookie(domain.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	return ""
}
