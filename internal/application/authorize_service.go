package application

import (
	"context"
	"strings"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"go.uber.org/zap"
)

// AuthorizeService validates authorization requests and issues single-use codes
type AuthorizeService struct {
	clientRepo domain.ClientRepository
	codeRepo   domain.AuthorizationCodeRepository
	codeTTL    time.Duration
	logger     *zap.Logger
}

func NewAuthorizeService(
	clientRepo domain.ClientRepository,
	codeRepo domain.AuthorizationCodeRepository,
	codeTTL time.Duration,
	logger *zap.Logger,
) *AuthorizeService {
	return &AuthorizeService{
		clientRepo: clientRepo,
		codeRepo:   codeRepo,
		codeTTL:    codeTTL,
		logger:     logger,
	}
}

// Authorize checks the request against the client registry and the caller
// session, then persists and returns a fresh authorization code. The caller
// redirects only after every check has passed; no error ever causes a
// redirect to the supplied URI.
func (s *AuthorizeService) Authorize(ctx context.Context, session *domain.Session, req domain.AuthorizeRequest) (string, error) {
	s.logger.Debug("Validating authorization request",
		zap.String("client_id", req.ClientID),
		zap.String("redirect_uri", req.RedirectURI),
		zap.String("scope", req.Scope))

	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		s.logger.Error("Failed to find client",
			zap.String("client_id", req.ClientID),
			zap.Error(err))
		return "", domain.ErrInvalidClient
	}

	if !client.AllowsRedirectURI(req.RedirectURI) {
		s.logger.Error("Redirect URI not registered",
			zap.String("client_id", req.ClientID),
			zap.String("redirect_uri", req.RedirectURI))
		return "", domain.ErrInvalidRedirectURI
	}

	if req.ResponseType != "code" {
		s.logger.Error("Unsupported response type",
			zap.String("response_type", req.ResponseType))
		return "", domain.ErrUnsupportedResponseType
	}

	scopes := strings.Fields(req.Scope)
	if len(scopes) == 0 || !client.AllowsScopes(scopes) {
		s.logger.Error("Requested scope not allowed",
			zap.String("client_id", req.ClientID),
			zap.String("scope", req.Scope))
		return "", domain.ErrInvalidScope
	}
	if !containsScope(scopes, "openid") {
		s.logger.Error("Missing openid scope", zap.String("scope", req.Scope))
		return "", domain.ErrInvalidScope
	}

	if req.CodeChallenge == "" || req.CodeChallengeMethod != domain.CodeChallengeMethodS256 {
		s.logger.Error("Missing or unsupported PKCE challenge",
			zap.String("code_challenge_method", req.CodeChallengeMethod))
		return "", domain.ErrMissingCodeChallenge
	}

	now := time.Now()
	if session == nil || session.Subject == "" || session.Expired(now) {
		s.logger.Error("No valid session for authorization request")
		return "", domain.ErrAuthenticationRequired
	}

	code, err := generateCode()
	if err != nil {
		s.logger.Error("Failed to generate authorization code", zap.Error(err))
		return "", domain.ErrInternal
	}

	authCode := &domain.AuthorizationCode{
		Code:                code,
		ClientID:            client.ID,
		RedirectURI:         req.RedirectURI,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		Subject:             session.Subject,
		Scope:               req.Scope,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.codeTTL),
	}

	if err := s.codeRepo.Create(ctx, authCode); err != nil {
		s.logger.Error("Failed to store authorization code", zap.Error(err))
		return "", domain.ErrInternal
	}

	s.logger.Info("Authorization code issued",
		zap.String("client_id", client.ID),
		zap.String("subject", session.Subject))

	return code, nil
}

func containsScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
