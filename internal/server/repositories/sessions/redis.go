package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces session keys.
const RedisKeyPrefix = "firewatch:session:"

// RedisRepository keeps one key per token. Keys expire together with the
// token, so DeleteExpired has nothing to do.
type RedisRepository struct {
	client redis.Cmdable
}

func NewRedisRepository(client redis.Cmdable) *RedisRepository {
	return &RedisRepository{client: client}
}

func redisKey(token string) string {
	return RedisKeyPrefix + token
}

func (r *RedisRepository) Create(ctx context.Context, userID, token string, createdAt, expiresAt time.Time) (string, error) {
	ttl := expiresAt.Sub(createdAt)
	if ttl <= 0 {
		return "", fmt.Errorf("session already expired at %s", expiresAt.Format(time.RFC3339))
	}

	s := models.Session{ID: uuid.NewString(), UserID: userID, Token: token, CreatedAt: createdAt, ExpiresAt: expiresAt}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, redisKey(token), payload, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("session for token already exists")
	}
	return s.ID, nil
}

func (r *RedisRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	n, err := r.client.Del(ctx, redisKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

func (r *RedisRepository) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
