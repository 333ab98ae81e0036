package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wowtoc/internal/config"
)

const redisKeyPrefix = "wowtoc:"

// RedisStore keeps values as plain redis strings without expiry.
type RedisStore struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.Config) (*RedisStore, error) {
	rs := &RedisStore{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})}
	if err := rs.Client.Ping(ctx).Err(); err != nil {
		_ = rs.Client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	return rs, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (r *RedisStore) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
