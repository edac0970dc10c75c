package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"consensus-be/internal/domain"
	"consensus-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// RedisPersistence keeps the poll collection as one JSON value under a
// single fixed key, mirroring the local-storage slot the store grew out
// of. No TTL; the document lives until deleted.
type RedisPersistence struct {
	client *redis.Client
}

// NewRedisPersistence creates a Redis-backed persistence
func NewRedisPersistence(client *redis.Client) *RedisPersistence {
	return &RedisPersistence{client: client}
}

func (r *RedisPersistence) Load(ctx context.Context) ([]domain.Poll, error) {
	val, err := r.client.Get(ctx, r.client.KeyBuilder.KeyPollsDocument())
	if errors.Is(err, goredis.Nil) {
		return []domain.Poll{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read poll document: %w", err)
	}
	var polls []domain.Poll
	if err := json.Unmarshal([]byte(val), &polls); err != nil {
		return nil, fmt.Errorf("malformed poll document: %w", err)
	}
	return polls, nil
}

func (r *RedisPersistence) Save(ctx context.Context, polls []domain.Poll) error {
	data, err := json.Marshal(polls)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.client.KeyBuilder.KeyPollsDocument(), data, 0)
}
