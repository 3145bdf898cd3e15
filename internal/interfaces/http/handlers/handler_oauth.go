package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ipede/auth-hub/internal/domain"
	httperrors "github.com/ipede/auth-hub/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// OAuthHandler serves the authorize, token and revoke endpoints
type OAuthHandler struct {
	authorizeService  domain.AuthorizeService
	tokenService      domain.TokenService
	revocationService domain.RevocationService
	logger            *zap.Logger
}

func NewOAuthHandler(
	authorizeService domain.AuthorizeService,
	tokenService domain.TokenService,
	revocationService domain.RevocationService,
	logger *zap.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		authorizeService:  authorizeService,
		tokenService:      tokenService,
		revocationService: revocationService,
		logger:            logger,
	}
}

// AuthorizeHandler handles GET/POST /api/oauth/authorize. All failures are
// returned directly to the user agent; the handler only redirects after a
// code has been issued, so no error can leak through the redirect URI.
func (h *OAuthHandler) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse authorization request", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return
	}

	req := domain.AuthorizeRequest{
		ClientID:            r.FormValue("client_id"),
		RedirectURI:         r.FormValue("redirect_uri"),
		ResponseType:        r.FormValue("response_type"),
		Scope:               r.FormValue("scope"),
		State:               r.FormValue("state"),
		CodeChallenge:       r.FormValue("code_challenge"),
		CodeChallengeMethod: r.FormValue("code_challenge_method"),
	}

	h.logger.Debug("Received authorization request",
		zap.String("client_id", req.ClientID),
		zap.String("redirect_uri", req.RedirectURI),
		zap.String("response_type", req.ResponseType),
		zap.String("scope", req.Scope))

	session, ok := domain.SessionFromContext(r.Context())
	if !ok {
		httperrors.RespondWithError(w, domain.ErrAuthenticationRequired)
		return
	}

	code, err := h.authorizeService.Authorize(r.Context(), session, req)
	if err != nil {
		h.logger.Error("Authorization failed", zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	redirectURL, err := url.Parse(req.RedirectURI)
	if err != nil {
		h.logger.Error("Failed to parse redirect URI",
			zap.String("redirect_uri", req.RedirectURI),
			zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRedirectURI)
		return
	}

	// The state is opaque to the server and echoed back untouched
	q := redirectURL.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	redirectURL.RawQuery = q.Encode()

	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// TokenHandler handles POST /api/oauth/token. Tokens are always returned in
// the response body, never through a redirect.
func (h *OAuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse token request", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return
	}

	req := domain.TokenRequest{
		GrantType:    r.PostForm.Get("grant_type"),
		Code:         r.PostForm.Get("code"),
		CodeVerifier: r.PostForm.Get("code_verifier"),
		ClientID:     r.PostForm.Get("client_id"),
		RedirectURI:  r.PostForm.Get("redirect_uri"),
		RefreshToken: r.PostForm.Get("refresh_token"),
	}

	h.logger.Debug("Received token request",
		zap.String("grant_type", req.GrantType),
		zap.String("client_id", req.ClientID))

	var tokenSet *domain.TokenSet
	var err error

	switch req.GrantType {
	case "authorization_code", "":
		// Early client variants omit grant_type on code exchange
		if req.Code == "" || req.CodeVerifier == "" {
			httperrors.RespondWithError(w, domain.ErrInvalidRequest)
			return
		}
		tokenSet, err = h.tokenService.ExchangeCode(r.Context(), req)

	case "refresh_token":
		if req.RefreshToken == "" {
			httperrors.RespondWithError(w, domain.ErrInvalidRequest)
			return
		}
		tokenSet, err = h.tokenService.Refresh(r.Context(), req)

	default:
		h.logger.Error("Unsupported grant type", zap.String("grant_type", req.GrantType))
		httperrors.RespondWithError(w, domain.ErrUnsupportedGrantType)
		return
	}

	if err != nil {
		h.logger.Error("Token request failed",
			zap.String("grant_type", req.GrantType),
			zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	if err := json.NewEncoder(w).Encode(tokenSet); err != nil {
		h.logger.Error("Failed to encode token response", zap.Error(err))
	}
}

// RevokeHandler handles POST /api/oauth/revoke per RFC 7009: success for
// unknown tokens, empty 200 body on success.
func (h *OAuthHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse revocation request", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return
	}

	token := r.PostForm.Get("token")
	tokenTypeHint := r.PostForm.Get("token_type_hint")
	clientID := r.PostForm.Get("client_id")

	if token == "" {
		var details httperrors.ValidationErrors
		details.Add("token", "token is required")
		httperrors.RespondWithDetails(w, domain.ErrInvalidRequest, details)
		return
	}

	if clientID == "" {
		httperrors.RespondWithError(w, domain.ErrInvalidClient)
		return
	}

	if err := h.revocationService.Revoke(r.Context(), token, tokenTypeHint, clientID); err != nil {
		h.logger.Error("Revocation failed", zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
