package application

import (
	"context"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TokenService redeems authorization codes and rotates refresh tokens
type TokenService struct {
	codeRepo   domain.AuthorizationCodeRepository
	tokenRepo  domain.TokenSessionRepository
	userRepo   domain.UserRepository
	signer     domain.TokenSigner
	refreshTTL time.Duration
	logger     *zap.Logger
}

func NewTokenService(
	codeRepo domain.AuthorizationCodeRepository,
	tokenRepo domain.TokenSessionRepository,
	userRepo domain.UserRepository,
	signer domain.TokenSigner,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		codeRepo:   codeRepo,
		tokenRepo:  tokenRepo,
		userRepo:   userRepo,
		signer:     signer,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// ExchangeCode redeems an authorization code for a token set. The code is
// consumed atomically before any other check, so concurrent exchanges for
// the same code settle on exactly one winner and a code burned by a failed
// verification can never be retried.
func (s *TokenService) ExchangeCode(ctx context.Context, req domain.TokenRequest) (*domain.TokenSet, error) {
	s.logger.Debug("Exchanging authorization code",
		zap.String("client_id", req.ClientID))

	authCode, err := s.codeRepo.Consume(ctx, req.Code)
	if err != nil {
		s.logger.Error("Failed to consume authorization code", zap.Error(err))
		return nil, domain.ErrInvalidGrant
	}

	if authCode.Expired(time.Now()) {
		s.logger.Error("Authorization code expired",
			zap.Time("expires_at", authCode.ExpiresAt))
		return nil, domain.ErrInvalidGrant
	}

	if req.ClientID != "" && req.ClientID != authCode.ClientID {
		s.logger.Error("Client ID mismatch on exchange",
			zap.String("expected", authCode.ClientID),
			zap.String("got", req.ClientID))
		return nil, domain.ErrInvalidGrant
	}

	if req.RedirectURI != "" && req.RedirectURI != authCode.RedirectURI {
		s.logger.Error("Redirect URI mismatch on exchange",
			zap.String("expected", authCode.RedirectURI),
			zap.String("got", req.RedirectURI))
		return nil, domain.ErrRedirectURIMismatch
	}

	if err := VerifyS256(req.CodeVerifier, authCode.CodeChallenge); err != nil {
		s.logger.Error("PKCE verification failed",
			zap.String("client_id", authCode.ClientID))
		return nil, domain.ErrPKCEVerificationFailed
	}

	email := s.lookupEmail(ctx, authCode.Subject)

	return s.issueTokenSet(ctx, authCode.Subject, email, authCode.ClientID, authCode.Scope, ulid.Make().String())
}

// Refresh rotates a refresh token and issues a fresh token set. The old
// token is retired atomically; replaying it fails with invalid_grant.
func (s *TokenService) Refresh(ctx context.Context, req domain.TokenRequest) (*domain.TokenSet, error) {
	s.logger.Debug("Refreshing token")

	session, err := s.tokenRepo.FindByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		s.logger.Error("Refresh token lookup failed", zap.Error(err))
		return nil, domain.ErrInvalidGrant
	}

	if !session.Active(time.Now()) {
		s.logger.Error("Refresh token not active",
			zap.Bool("revoked", session.Revoked),
			zap.Bool("rotated", session.Rotated))
		return nil, domain.ErrInvalidGrant
	}

	if req.ClientID != "" && req.ClientID != session.ClientID {
		s.logger.Error("Client ID mismatch on refresh",
			zap.String("expected", session.ClientID),
			zap.String("got", req.ClientID))
		return nil, domain.ErrInvalidGrant
	}

	if err := s.tokenRepo.MarkRotated(ctx, req.RefreshToken); err != nil {
		s.logger.Error("Failed to rotate refresh token", zap.Error(err))
		return nil, domain.ErrInvalidGrant
	}

	return s.issueTokenSet(ctx, session.Subject, session.Email, session.ClientID, session.Scope, session.FamilyID)
}

func (s *TokenService) issueTokenSet(ctx context.Context, subject, email, clientID, scope, familyID string) (*domain.TokenSet, error) {
	idToken, err := s.signer.SignIDToken(subject, email, clientID)
	if err != nil {
		s.logger.Error("Failed to sign ID token", zap.Error(err))
		return nil, domain.ErrInternal
	}

	accessToken, err := s.signer.SignAccessToken(subject, clientID, scope)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, domain.ErrInternal
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		s.logger.Error("Failed to generate refresh token", zap.Error(err))
		return nil, domain.ErrInternal
	}

	now := time.Now()
	tokenSession := &domain.TokenSession{
		ID:           ulid.Make().String(),
		FamilyID:     familyID,
		RefreshToken: refreshToken,
		Subject:      subject,
		Email:        email,
		ClientID:     clientID,
		Scope:        scope,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.refreshTTL),
	}

	if err := s.tokenRepo.Create(ctx, tokenSession); err != nil {
		s.logger.Error("Failed to store token session", zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.logger.Info("Token set issued",
		zap.String("client_id", clientID),
		zap.String("subject", subject))

	return &domain.TokenSet{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.signer.AccessTokenTTL().Seconds()),
	}, nil
}

// lookupEmail resolves the subject to an email claim for the ID token.
// Codes may outlive a deleted user, so a miss degrades to an empty claim.
func (s *TokenService) lookupEmail(ctx context.Context, subject string) string {
	id, err := ulid.Parse(subject)
	if err != nil {
		return ""
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to resolve subject email",
			zap.String("subject", subject),
			zap.Error(err))
		return ""
	}
	return user.Email
}
