package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "skycast:session:"
	refreshKeyPrefix = "skycast:refresh:"
)

// RedisRepository stores sessions in Redis. Keys expire with the session.
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

func sessionKey(id uuid.UUID) string { return sessionKeyPrefix + id.String() }
func refreshKey(token string) string { return refreshKeyPrefix + token }

func (r *RedisRepository) Save(ctx context.Context, session Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.client.Set(ctx, refreshKey(session.RefreshToken), session.ID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisRepository) GetByRefreshToken(ctx context.Context, token string) (*Session, error) {
	idStr, err := r.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session id for refresh token: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RedisRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	deleted, err := r.client.Del(ctx, refreshKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if deleted == 0 {
		return ErrRefreshTokenReused
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return r.client.Del(ctx, sessionKey(id), refreshKey(session.RefreshToken)).Err()
}
