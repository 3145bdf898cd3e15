package domain

import (
	"context"
	"time"
)

// SessionCookieName is the cookie the hub sets after login and the
// storefront demos look for before starting an authorization request.
const SessionCookieName = "auth_session"

// Session represents an authenticated end-user on the hub
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionStore defines the interface for hub login session storage
type SessionStore interface {
	// Save stores the session until its expiry
	Save(ctx context.Context, session *Session) error

	// Get loads a session by id, failing with ErrSessionNotFound when absent
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
