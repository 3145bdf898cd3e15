package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresAuthorizationCodeRepository implements AuthorizationCodeRepository
// using PostgreSQL
type PostgresAuthorizationCodeRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewAuthorizationCodeRepository creates a new PostgresAuthorizationCodeRepository
func NewAuthorizationCodeRepository(db *database.Postgres, logger *zap.Logger) domain.AuthorizationCodeRepository {
	return &PostgresAuthorizationCodeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresAuthorizationCodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	return r.db.Exec(ctx, `
		INSERT INTO authorization_codes
			(code, client_id, redirect_uri, code_challenge, code_challenge_method,
			 subject, scope, created_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
	`, code.Code, code.ClientID, code.RedirectURI, code.CodeChallenge,
		code.CodeChallengeMethod, code.Subject, code.Scope, code.CreatedAt, code.ExpiresAt)
}

// Consume flips the consumed flag with a single conditional UPDATE. The
// WHERE NOT consumed guard makes concurrent exchanges for the same code
// race on one row version, so exactly one caller gets the code back.
func (r *PostgresAuthorizationCodeRepository) Consume(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	authCode := &domain.AuthorizationCode{Consumed: true}

	err := r.db.QueryRow(ctx, `
		UPDATE authorization_codes
		SET consumed = TRUE
		WHERE code = $1 AND NOT consumed
		RETURNING code, client_id, redirect_uri, code_challenge, code_challenge_method,
		          subject, scope, created_at, expires_at
	`, code).Scan(&authCode.Code, &authCode.ClientID, &authCode.RedirectURI,
		&authCode.CodeChallenge, &authCode.CodeChallengeMethod, &authCode.Subject,
		&authCode.Scope, &authCode.CreatedAt, &authCode.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidGrant
		}
		return nil, err
	}

	return authCode, nil
}

func (r *PostgresAuthorizationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return r.db.ExecAffected(ctx, `
		DELETE FROM authorization_codes WHERE expires_at < $1
	`, before)
}
