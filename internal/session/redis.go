package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore shares sessions across server instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	err := s.rdb.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	b, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var data Data
	err = json.Unmarshal(b, &data)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	err = s.rdb.Set(ctx, redisKeyPrefix+id, b, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.rdb == nil {
		return nil
	}
	err := s.rdb.Close()
	if err != nil {
		slog.Error("failed to close redis session store", "error", err)
	}
	return err
}
