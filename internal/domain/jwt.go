package domain

import (
	"context"
	"time"
)

// Default token lifetimes, overridable through configuration
const (
	DefaultCodeTTL           = 60 * time.Second
	DefaultAccessTokenTTL    = time.Hour
	DefaultRefreshTokenTTL   = 30 * 24 * time.Hour
	DefaultSessionTTL        = 10 * time.Minute
	DefaultCodeSweepInterval = time.Minute
)

// TokenSigner signs ID and access tokens with the server key
type TokenSigner interface {
	// SignIDToken issues a signed ID token asserting the subject identity
	// to the given client
	SignIDToken(subject, email, clientID string) (string, error)

	// SignAccessToken issues a signed access token for the subject and scope
	SignAccessToken(subject, clientID, scope string) (string, error)

	// AccessTokenTTL returns the lifetime stamped into issued tokens
	AccessTokenTTL() time.Duration

	// JWKS returns the public key set for token verification
	JWKS(ctx context.Context) (map[string]interface{}, error)
}
