package repository

import (
	"context"
	"errors"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(db *database.Postgres, logger *zap.Logger) domain.UserRepository {
	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	return r.scanUser(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id.String())
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = $1
	`, email)
}

func (r *PostgresUserRepository) scanUser(ctx context.Context, sql string, arg interface{}) (*domain.User, error) {
	user := &domain.User{}
	var id string

	err := r.db.QueryRow(ctx, sql, arg).Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, err
	}
	user.ID = parsed

	return user, nil
}
