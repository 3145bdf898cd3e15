package repository

import (
	"context"
	"errors"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresTokenSessionRepository implements TokenSessionRepository using PostgreSQL
type PostgresTokenSessionRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewTokenSessionRepository creates a new PostgresTokenSessionRepository
func NewTokenSessionRepository(db *database.Postgres, logger *zap.Logger) domain.TokenSessionRepository {
	return &PostgresTokenSessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresTokenSessionRepository) Create(ctx context.Context, session *domain.TokenSession) error {
	return r.db.Exec(ctx, `
		INSERT INTO token_sessions
			(id, family_id, refresh_token, subject, email, client_id, scope,
			 created_at, expires_at, rotated, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE)
	`, session.ID, session.FamilyID, session.RefreshToken, session.Subject,
		session.Email, session.ClientID, session.Scope, session.CreatedAt, session.ExpiresAt)
}

func (r *PostgresTokenSessionRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.TokenSession, error) {
	session := &domain.TokenSession{}

	err := r.db.QueryRow(ctx, `
		SELECT id, family_id, refresh_token, subject, email, client_id, scope,
		       created_at, expires_at, rotated, revoked
		FROM token_sessions WHERE refresh_token = $1
	`, token).Scan(&session.ID, &session.FamilyID, &session.RefreshToken,
		&session.Subject, &session.Email, &session.ClientID, &session.Scope,
		&session.CreatedAt, &session.ExpiresAt, &session.Rotated, &session.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidGrant
		}
		return nil, err
	}

	return session, nil
}

// MarkRotated retires a refresh token with a conditional UPDATE so that
// concurrent refresh calls settle on a single winner.
func (r *PostgresTokenSessionRepository) MarkRotated(ctx context.Context, token string) error {
	affected, err := r.db.ExecAffected(ctx, `
		UPDATE token_sessions
		SET rotated = TRUE
		WHERE refresh_token = $1 AND NOT rotated AND NOT revoked
	`, token)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidGrant
	}
	return nil
}

// RevokeFamily marks every session sharing a family with the token revoked.
// Revoking an unknown token affects zero rows and is still a success.
func (r *PostgresTokenSessionRepository) RevokeFamily(ctx context.Context, token string) error {
	return r.db.Exec(ctx, `
		UPDATE token_sessions
		SET revoked = TRUE
		WHERE family_id = (SELECT family_id FROM token_sessions WHERE refresh_token = $1)
	`, token)
}
