package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ipede/auth-hub/internal/domain"
	httperrors "github.com/ipede/auth-hub/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// OIDCHandler serves the discovery document and JWKS
type OIDCHandler struct {
	signer domain.TokenSigner
	issuer string
	logger *zap.Logger
}

func NewOIDCHandler(signer domain.TokenSigner, issuer string, logger *zap.Logger) *OIDCHandler {
	return &OIDCHandler{
		signer: signer,
		issuer: issuer,
		logger: logger,
	}
}

// ConfigurationHandler handles GET /api/.well-known/openid-configuration
func (h *OIDCHandler) ConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	config := map[string]interface{}{
		"issuer":                                h.issuer,
		"authorization_endpoint":                fmt.Sprintf("%s/api/oauth/authorize", h.issuer),
		"token_endpoint":                        fmt.Sprintf("%s/api/oauth/token", h.issuer),
		"revocation_endpoint":                   fmt.Sprintf("%s/api/oauth/revoke", h.issuer),
		"jwks_uri":                              fmt.Sprintf("%s/api/.well-known/jwks.json", h.issuer),
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code", "refresh_token"},
		"code_challenge_methods_supported":      []string{domain.CodeChallengeMethodS256},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"scopes_supported":                      []string{"openid", "profile", "email"},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(config); err != nil {
		h.logger.Error("Failed to encode discovery document", zap.Error(err))
	}
}

// JWKSHandler handles GET /api/.well-known/jwks.json
func (h *OIDCHandler) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	jwks, err := h.signer.JWKS(r.Context())
	if err != nil {
		h.logger.Error("Failed to build JWKS", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(jwks); err != nil {
		h.logger.Error("Failed to encode JWKS", zap.Error(err))
	}
}
