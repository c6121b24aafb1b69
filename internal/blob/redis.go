package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/enroll-admin-api/pkg/config"
)

const redisKeyPrefix = "enroll:collections:"

// RedisStore keeps the collection documents in Redis, one value per key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Redis client and verifies the connection.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Load fetches the document for key, mapping redis.Nil to ErrNoDocument.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return doc, nil
}

// Save stores the document without expiration; collections are durable state.
func (s *RedisStore) Save(ctx context.Context, key string, doc []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
