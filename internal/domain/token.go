package domain

import (
	"context"
	"time"
)

// TokenSet is the response body of a successful token exchange
type TokenSet struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenSession tracks an issued refresh token. Rotation inserts a new row
// in the same family; revocation marks the whole family revoked so a leaked
// member cannot be replayed.
type TokenSession struct {
	ID           string
	FamilyID     string
	RefreshToken string
	Subject      string
	Email        string
	ClientID     string
	Scope        string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Rotated      bool
	Revoked      bool
}

// Active reports whether the refresh token can still be exchanged.
func (t *TokenSession) Active(now time.Time) bool {
	return !t.Revoked && !t.Rotated && now.Before(t.ExpiresAt)
}

// TokenSessionRepository defines the interface for refresh token storage
type TokenSessionRepository interface {
	// Create persists a newly issued token session
	Create(ctx context.Context, session *TokenSession) error

	// FindByRefreshToken loads a token session, failing with ErrInvalidGrant
	// when the token is unknown
	FindByRefreshToken(ctx context.Context, token string) (*TokenSession, error)

	// MarkRotated atomically retires a refresh token before its successor is
	// issued. Tokens already rotated or revoked fail with ErrInvalidGrant so
	// concurrent refresh attempts settle on a single winner.
	MarkRotated(ctx context.Context, token string) error

	// RevokeFamily marks every session sharing a family with the given token
	// as revoked. Unknown tokens are a no-op, not an error.
	RevokeFamily(ctx context.Context, token string) error
}
