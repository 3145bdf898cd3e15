package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTokenSessionRepository struct {
	mock.Mock
}

func (m *MockTokenSessionRepository) Create(ctx context.Context, session *domain.TokenSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockTokenSessionRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.TokenSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenSession), args.Error(1)
}

func (m *MockTokenSessionRepository) MarkRotated(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenSessionRepository) RevokeFamily(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubSigner issues recognizable fake tokens without an RSA key
type stubSigner struct{}

func (stubSigner) SignIDToken(subject, email, clientID string) (string, error) {
	return "id-token-" + subject, nil
}

func (stubSigner) SignAccessToken(subject, clientID, scope string) (string, error) {
	return "access-token-" + subject, nil
}

func (stubSigner) AccessTokenTTL() time.Duration { return time.Hour }

func (stubSigner) JWKS(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"keys": []interface{}{}}, nil
}

const testVerifier = "a-verifier-that-is-long-enough-for-rfc-7636"

func issuedCode(subject string) *domain.AuthorizationCode {
	now := time.Now()
	return &domain.AuthorizationCode{
		Code:                "abc123code",
		ClientID:            "demo-store-1",
		RedirectURI:         "http://localhost:3001/callback",
		CodeChallenge:       ComputeChallengeS256(testVerifier),
		CodeChallengeMethod: domain.CodeChallengeMethodS256,
		Subject:             subject,
		Scope:               "openid profile",
		CreatedAt:           now,
		ExpiresAt:           now.Add(time.Minute),
	}
}

func TestTokenService_ExchangeCode(t *testing.T) {
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	userID := ulid.Make()
	user := &domain.User{ID: userID, Email: "user@example.com"}

	t.Run("successful exchange", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "abc123code").Return(issuedCode(userID.String()), nil)
		userRepo.On("FindByID", ctx, userID).Return(user, nil)
		tokenRepo.On("Create", ctx, mock.MatchedBy(func(s *domain.TokenSession) bool {
			return s.Subject == userID.String() &&
				s.ClientID == "demo-store-1" &&
				s.Email == "user@example.com" &&
				s.FamilyID != "" &&
				s.RefreshToken != ""
		})).Return(nil)

		tokens, err := service.ExchangeCode(ctx, domain.TokenRequest{
			Code:         "abc123code",
			CodeVerifier: testVerifier,
			ClientID:     "demo-store-1",
			RedirectURI:  "http://localhost:3001/callback",
		})
		require.NoError(t, err)
		assert.Equal(t, "id-token-"+userID.String(), tokens.IDToken)
		assert.Equal(t, "access-token-"+userID.String(), tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.Equal(t, int64(3600), tokens.ExpiresIn)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("unknown or consumed code", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "gone").Return(nil, domain.ErrInvalidGrant)

		_, err := service.ExchangeCode(ctx, domain.TokenRequest{Code: "gone", CodeVerifier: testVerifier})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("expired code", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		code := issuedCode(userID.String())
		code.ExpiresAt = time.Now().Add(-time.Second)
		codeRepo.On("Consume", ctx, "abc123code").Return(code, nil)

		_, err := service.ExchangeCode(ctx, domain.TokenRequest{Code: "abc123code", CodeVerifier: testVerifier})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("client id mismatch", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "abc123code").Return(issuedCode(userID.String()), nil)

		_, err := service.ExchangeCode(ctx, domain.TokenRequest{
			Code:         "abc123code",
			CodeVerifier: testVerifier,
			ClientID:     "demo-store-2",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("redirect uri mismatch", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "abc123code").Return(issuedCode(userID.String()), nil)

		_, err := service.ExchangeCode(ctx, domain.TokenRequest{
			Code:         "abc123code",
			CodeVerifier: testVerifier,
			RedirectURI:  "http://localhost:3002/callback",
		})
		assert.ErrorIs(t, err, domain.ErrRedirectURIMismatch)
	})

	t.Run("wrong verifier burns the code", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "abc123code").Return(issuedCode(userID.String()), nil)

		_, err := service.ExchangeCode(ctx, domain.TokenRequest{
			Code:         "abc123code",
			CodeVerifier: "the-wrong-verifier-but-also-long-enough-for-rfc",
		})
		assert.ErrorIs(t, err, domain.ErrPKCEVerificationFailed)
		// the code was consumed before verification, so a retry with the
		// right verifier cannot succeed
		codeRepo.AssertCalled(t, "Consume", ctx, "abc123code")
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("deleted user degrades to empty email claim", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		codeRepo.On("Consume", ctx, "abc123code").Return(issuedCode(userID.String()), nil)
		userRepo.On("FindByID", ctx, userID).Return(nil, domain.ErrUserNotFound)
		tokenRepo.On("Create", ctx, mock.MatchedBy(func(s *domain.TokenSession) bool {
			return s.Email == ""
		})).Return(nil)

		tokens, err := service.ExchangeCode(ctx, domain.TokenRequest{
			Code:         "abc123code",
			CodeVerifier: testVerifier,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	activeSession := func() *domain.TokenSession {
		now := time.Now()
		return &domain.TokenSession{
			ID:           ulid.Make().String(),
			FamilyID:     "family-1",
			RefreshToken: "refresh-1",
			Subject:      "subject-1",
			Email:        "user@example.com",
			ClientID:     "demo-store-1",
			Scope:        "openid profile",
			CreatedAt:    now,
			ExpiresAt:    now.Add(720 * time.Hour),
		}
	}

	t.Run("successful rotation", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(activeSession(), nil)
		tokenRepo.On("MarkRotated", ctx, "refresh-1").Return(nil)
		tokenRepo.On("Create", ctx, mock.MatchedBy(func(s *domain.TokenSession) bool {
			// the successor stays in the same family
			return s.FamilyID == "family-1" && s.RefreshToken != "refresh-1"
		})).Return(nil)

		tokens, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
		require.NoError(t, err)
		assert.NotEqual(t, "refresh-1", tokens.RefreshToken)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		tokenRepo.On("FindByRefreshToken", ctx, "missing").Return(nil, domain.ErrInvalidGrant)

		_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "missing"})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("rotated token replay", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		session := activeSession()
		session.Rotated = true
		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(session, nil)

		_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
		tokenRepo.AssertNotCalled(t, "MarkRotated", mock.Anything, mock.Anything)
	})

	t.Run("revoked token", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		session := activeSession()
		session.Revoked = true
		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(session, nil)

		_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("expired token", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		session := activeSession()
		session.ExpiresAt = time.Now().Add(-time.Hour)
		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(session, nil)

		_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("client mismatch", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(activeSession(), nil)

		_, err := service.Refresh(ctx, domain.TokenRequest{
			RefreshToken: "refresh-1",
			ClientID:     "demo-store-2",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	})

	t.Run("lost rotation race", func(t *testing.T) {
		codeRepo := new(MockAuthorizationCodeRepository)
		tokenRepo := new(MockTokenSessionRepository)
		userRepo := new(MockUserRepository)
		service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

		tokenRepo.On("FindByRefreshToken", ctx, "refresh-1").Return(activeSession(), nil)
		tokenRepo.On("MarkRotated", ctx, "refresh-1").Return(domain.ErrInvalidGrant)

		_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidGrant)
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// memoryCodeRepository enforces single consumption under a mutex the way the
// conditional UPDATE does in Postgres.
type memoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*domain.AuthorizationCode
}

func newMemoryCodeRepository() *memoryCodeRepository {
	return &memoryCodeRepository{codes: make(map[string]*domain.AuthorizationCode)}
}

func (r *memoryCodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code.Code] = code
	return nil
}

func (r *memoryCodeRepository) Consume(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[code]
	if !ok || stored.Consumed {
		return nil, domain.ErrInvalidGrant
	}
	stored.Consumed = true
	copied := *stored
	return &copied, nil
}

func (r *memoryCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type memoryTokenRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.TokenSession
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{sessions: make(map[string]*domain.TokenSession)}
}

func (r *memoryTokenRepository) Create(ctx context.Context, session *domain.TokenSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.RefreshToken] = session
	return nil
}

func (r *memoryTokenRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.TokenSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrInvalidGrant
	}
	copied := *session
	return &copied, nil
}

func (r *memoryTokenRepository) MarkRotated(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || session.Rotated || session.Revoked {
		return domain.ErrInvalidGrant
	}
	session.Rotated = true
	return nil
}

func (r *memoryTokenRepository) RevokeFamily(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil
	}
	for _, s := range r.sessions {
		if s.FamilyID == session.FamilyID {
			s.Revoked = true
		}
	}
	return nil
}

func TestTokenService_ConcurrentExchange(t *testing.T) {
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	codeRepo := newMemoryCodeRepository()
	tokenRepo := newMemoryTokenRepository()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
	service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

	code := issuedCode("subject-1")
	require.NoError(t, codeRepo.Create(ctx, code))

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ExchangeCode(ctx, domain.TokenRequest{
				Code:         code.Code,
				CodeVerifier: testVerifier,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, invalidGrants int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == domain.ErrInvalidGrant:
			invalidGrants++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one exchange may win")
	assert.Equal(t, attempts-1, invalidGrants)
}

func TestTokenService_ConcurrentRefresh(t *testing.T) {
	logger, _ := zap.NewProduction()
	ctx := context.Background()

	codeRepo := newMemoryCodeRepository()
	tokenRepo := newMemoryTokenRepository()
	userRepo := new(MockUserRepository)
	service := NewTokenService(codeRepo, tokenRepo, userRepo, stubSigner{}, 720*time.Hour, logger)

	now := time.Now()
	require.NoError(t, tokenRepo.Create(ctx, &domain.TokenSession{
		ID:           ulid.Make().String(),
		FamilyID:     "family-1",
		RefreshToken: "refresh-1",
		Subject:      "subject-1",
		ClientID:     "demo-store-1",
		Scope:        "openid",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}))

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Refresh(ctx, domain.TokenRequest{RefreshToken: "refresh-1"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one refresh may rotate the token")
}
