package handlers

// LoginRequest is the body of a hub login call
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse confirms a created session
type LoginResponse struct {
	ExpiresIn int64 `json:"expires_in"`
}

// ClientRequest is the body of a client registration call
type ClientRequest struct {
	ID           string   `json:"id"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes"`
}
