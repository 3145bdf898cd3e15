package domain

import "context"

// AuthorizeRequest carries the parameters of an authorization request as
// received on the wire
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// TokenRequest carries the form parameters of a token endpoint call
type TokenRequest struct {
	GrantType    string
	Code         string
	CodeVerifier string
	ClientID     string
	RedirectURI  string
	RefreshToken string
}

// AuthorizeService validates authorization requests and issues codes
type AuthorizeService interface {
	// Authorize validates the request against the client registry and the
	// caller session and returns a short-lived single-use code
	Authorize(ctx context.Context, session *Session, req AuthorizeRequest) (string, error)
}

// TokenService exchanges grants for token sets
type TokenService interface {
	// ExchangeCode redeems an authorization code with its PKCE verifier.
	// Succeeds at most once per code.
	ExchangeCode(ctx context.Context, req TokenRequest) (*TokenSet, error)

	// Refresh rotates a refresh token and issues a fresh token set
	Refresh(ctx context.Context, req TokenRequest) (*TokenSet, error)
}

// RevocationService invalidates issued tokens
type RevocationService interface {
	// Revoke makes the token unusable. Idempotent: unknown or already
	// revoked tokens succeed without revealing whether they existed.
	Revoke(ctx context.Context, token, tokenTypeHint, clientID string) error
}

// AuthService manages hub login sessions
type AuthService interface {
	// Login verifies credentials and creates a session
	Login(ctx context.Context, email, password string) (*Session, error)

	// Logout deletes the session. Unknown sessions succeed.
	Logout(ctx context.Context, sessionID string) error
}
