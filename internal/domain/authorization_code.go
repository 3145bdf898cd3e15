package domain

import (
	"context"
	"time"
)

// CodeChallengeMethodS256 is the only accepted PKCE challenge method.
// The plain method defeats the purpose of PKCE and is rejected.
const CodeChallengeMethodS256 = "S256"

// AuthorizationCode is a single-use credential binding the PKCE challenge,
// redirect URI, client and subject together. Lifecycle: issued -> consumed
// or issued -> expired, nothing else.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	Subject             string
	Scope               string
	CreatedAt           time.Time
	ExpiresAt           time.Time
	Consumed            bool
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AuthorizationCodeRepository defines the interface for authorization code storage
type AuthorizationCodeRepository interface {
	// Create persists a freshly issued code
	Create(ctx context.Context, code *AuthorizationCode) error

	// Consume atomically marks the code consumed and returns it. At most one
	// call per code value may ever succeed; unknown or already consumed codes
	// fail with ErrInvalidGrant. Expiry is checked by the caller.
	Consume(ctx context.Context, code string) (*AuthorizationCode, error)

	// DeleteExpired removes codes that expired before the given instant.
	// Best-effort cleanup, not required for correctness.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
