package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresClientRepository implements ClientRepository using PostgreSQL
type PostgresClientRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewClientRepository creates a new PostgresClientRepository
func NewClientRepository(db *database.Postgres, logger *zap.Logger) domain.ClientRepository {
	return &PostgresClientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresClientRepository) Create(ctx context.Context, client *domain.Client) error {
	redirectURIs, err := json.Marshal(client.RedirectURIs)
	if err != nil {
		return err
	}

	scopes, err := json.Marshal(client.Scopes)
	if err != nil {
		return err
	}

	return r.db.Exec(ctx, `
		INSERT INTO oauth2_clients (id, redirect_uris, scopes, created_at)
		VALUES ($1, $2, $3, $4)
	`, client.ID, redirectURIs, scopes, client.CreatedAt)
}

func (r *PostgresClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	client := &domain.Client{}
	var redirectURIs, scopes []byte

	err := r.db.QueryRow(ctx, `
		SELECT id, redirect_uris, scopes, created_at
		FROM oauth2_clients WHERE id = $1
	`, id).Scan(&client.ID, &redirectURIs, &scopes, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidClient
		}
		return nil, err
	}

	if err := json.Unmarshal(redirectURIs, &client.RedirectURIs); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopes, &client.Scopes); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *PostgresClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, redirect_uris, scopes, created_at
		FROM oauth2_clients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client := &domain.Client{}
		var redirectURIs, scopes []byte

		if err := rows.Scan(&client.ID, &redirectURIs, &scopes, &client.CreatedAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(redirectURIs, &client.RedirectURIs); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(scopes, &client.Scopes); err != nil {
			return nil, err
		}

		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *PostgresClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.Exec(ctx, "DELETE FROM oauth2_clients WHERE id = $1", id)
}
