package application

import (
	"context"
	"errors"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/password"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// AuthService authenticates hub users and manages their login sessions
type AuthService struct {
	userRepo   domain.UserRepository
	sessions   domain.SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	userRepo domain.UserRepository,
	sessions domain.SessionStore,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies the credentials and creates a hub session. An email that
// was never seen before provisions a fresh account, so the demo stores work
// against an empty database; later logins must present the same password.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*domain.Session, error) {
	s.logger.Debug("Authenticating user", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.provisionUser(ctx, email, pass)
		if err != nil {
			return nil, err
		}
	case err != nil:
		s.logger.Error("User lookup failed", zap.String("email", email), zap.Error(err))
		return nil, domain.ErrInternal
	default:
		if err := password.Check(pass, user.PasswordHash); err != nil {
			s.logger.Error("Password mismatch", zap.String("email", email))
			return nil, domain.ErrInvalidCredentials
		}
	}

	id, err := generateCode()
	if err != nil {
		s.logger.Error("Failed to generate session id", zap.Error(err))
		return nil, domain.ErrInternal
	}

	now := time.Now()
	session := &domain.Session{
		ID:        id,
		Subject:   user.ID.String(),
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to store session", zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.logger.Info("User logged in", zap.String("subject", session.Subject))
	return session, nil
}

// provisionUser creates an account on first login
func (s *AuthService) provisionUser(ctx context.Context, email, pass string) (*domain.User, error) {
	hash, err := password.Hash(pass)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	user := &domain.User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to provision user", zap.String("email", email), zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.logger.Info("User provisioned on first login", zap.String("subject", user.ID.String()))
	return user, nil
}

// Logout deletes the session. Unknown session ids succeed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("Failed to delete session", zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}
