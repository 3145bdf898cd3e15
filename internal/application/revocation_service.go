package application

import (
	"context"

	"github.com/ipede/auth-hub/internal/domain"
	"go.uber.org/zap"
)

// RevocationService invalidates refresh tokens per RFC 7009
type RevocationService struct {
	clientRepo domain.ClientRepository
	tokenRepo  domain.TokenSessionRepository
	logger     *zap.Logger
}

func NewRevocationService(
	clientRepo domain.ClientRepository,
	tokenRepo domain.TokenSessionRepository,
	logger *zap.Logger,
) *RevocationService {
	return &RevocationService{
		clientRepo: clientRepo,
		tokenRepo:  tokenRepo,
		logger:     logger,
	}
}

// Revoke marks the token family revoked. Unknown tokens, already revoked
// tokens and tokens belonging to a different client all return success, so
// the endpoint never acts as an existence oracle.
func (s *RevocationService) Revoke(ctx context.Context, token, tokenTypeHint, clientID string) error {
	s.logger.Debug("Revoking token",
		zap.String("token_type_hint", tokenTypeHint),
		zap.String("client_id", clientID))

	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		s.logger.Error("Unknown client on revocation",
			zap.String("client_id", clientID),
			zap.Error(err))
		return domain.ErrInvalidClient
	}

	session, err := s.tokenRepo.FindByRefreshToken(ctx, token)
	if err != nil {
		// RFC 7009 section 2.2: unknown tokens are treated as already revoked
		s.logger.Debug("Token not found, treating as revoked")
		return nil
	}

	if session.ClientID != clientID {
		// Revoking another client's token is also reported as success
		s.logger.Warn("Client mismatch on revocation",
			zap.String("client_id", clientID))
		return nil
	}

	if err := s.tokenRepo.RevokeFamily(ctx, token); err != nil {
		s.logger.Error("Failed to revoke token family", zap.Error(err))
		return domain.ErrInternal
	}

	s.logger.Info("Token family revoked", zap.String("client_id", clientID))
	return nil
}
