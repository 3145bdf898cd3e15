package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "auth_session:"

// RedisStore implements SessionStore on redis. Session expiry rides on the
// key TTL, so expired sessions disappear without any sweep.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}

	return s.client.Set(ctx, keyPrefix+session.ID, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		return nil, err
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(val), session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// Close releases the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
