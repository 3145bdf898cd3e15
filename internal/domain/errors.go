package domain

// Error is a protocol-level error carrying the OAuth2 error code sent on
// the wire. Sentinels below are compared by identity with errors.Is.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// GetCode returns the wire error code
func (e *Error) GetCode() string {
	return e.Code
}

// GetMessage returns the human readable message
func (e *Error) GetMessage() string {
	return e.Message
}

var (
	// ErrInvalidClient is returned when the client id is not registered
	ErrInvalidClient = &Error{Code: "invalid_client", Message: "unknown client"}

	// ErrInvalidRedirectURI is returned when the redirect URI is not an exact
	// match against the client registration
	ErrInvalidRedirectURI = &Error{Code: "invalid_redirect_uri", Message: "redirect uri is not registered for this client"}

	// ErrUnsupportedResponseType is returned for any response_type other than "code"
	ErrUnsupportedResponseType = &Error{Code: "unsupported_response_type", Message: "only the authorization code response type is supported"}

	// ErrInvalidScope is returned when the requested scope is not a subset of
	// the client scopes or is missing openid
	ErrInvalidScope = &Error{Code: "invalid_scope", Message: "requested scope is not allowed for this client"}

	// ErrInvalidRequest is returned for malformed or incomplete requests
	ErrInvalidRequest = &Error{Code: "invalid_request", Message: "malformed request"}

	// ErrMissingCodeChallenge is returned when PKCE parameters are absent or
	// the challenge method is not S256
	ErrMissingCodeChallenge = &Error{Code: "invalid_request", Message: "code challenge with method S256 is required"}

	// ErrAuthenticationRequired is returned when no valid hub session accompanies
	// the authorization request
	ErrAuthenticationRequired = &Error{Code: "login_required", Message: "user authentication is required"}

	// ErrInvalidGrant covers unknown, expired and already consumed codes as
	// well as unusable refresh tokens
	ErrInvalidGrant = &Error{Code: "invalid_grant", Message: "authorization grant is invalid, expired or revoked"}

	// ErrRedirectURIMismatch is returned when the redirect URI presented at
	// the token endpoint differs from the one the code was issued for
	ErrRedirectURIMismatch = &Error{Code: "invalid_grant", Message: "redirect uri does not match the authorization request"}

	// ErrPKCEVerificationFailed is returned when the code verifier does not
	// hash to the stored challenge
	ErrPKCEVerificationFailed = &Error{Code: "invalid_grant", Message: "code verifier does not match the challenge"}

	// ErrUnsupportedGrantType is returned for grant types other than
	// authorization_code and refresh_token
	ErrUnsupportedGrantType = &Error{Code: "unsupported_grant_type", Message: "grant type is not supported"}

	// ErrInvalidCredentials is returned when login credentials are wrong
	ErrInvalidCredentials = &Error{Code: "invalid_credentials", Message: "invalid email or password"}

	// ErrSessionNotFound is returned when a hub session id resolves to nothing
	ErrSessionNotFound = &Error{Code: "login_required", Message: "session not found"}

	// ErrSessionExpired is returned when storing a session whose expiry has
	// already passed
	ErrSessionExpired = &Error{Code: "invalid_request", Message: "session already expired"}

	// ErrUserNotFound is returned when a user lookup misses
	ErrUserNotFound = &Error{Code: "not_found", Message: "user not found"}

	// ErrUserAlreadyExists is returned when registering a duplicated email
	ErrUserAlreadyExists = &Error{Code: "conflict", Message: "user already exists"}

	// ErrClientAlreadyExists is returned when registering a duplicated client id
	ErrClientAlreadyExists = &Error{Code: "conflict", Message: "client already exists"}

	// ErrInternal is returned when there is an internal server error
	ErrInternal = &Error{Code: "server_error", Message: "internal server error"}
)
