package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tender-watch/pkg/domain"
)

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix namespaces every key written by tender-watch
	Prefix string `yaml:"prefix"`
}

// SetDefaults applies default values for RedisConfig
func (c *RedisConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Prefix == "" {
		c.Prefix = "tenderwatch:"
	}
}

// RedisStore keeps each site's seen tenders as a JSON string and its last
// URL as a plain string. Keys never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	cfg.SetDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) seenKey(key string) string {
	return s.prefix + "seen:" + key
}

func (s *RedisStore) lastKey(key string) string {
	return s.prefix + "last:" + key
}

// LoadSeen decodes the JSON list stored for key
func (s *RedisStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	data, err := s.client.Get(ctx, s.seenKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get seen tenders: %w", err)
	}

	var tenders []domain.Tender
	if err := json.Unmarshal(data, &tenders); err != nil {
		return nil, fmt.Errorf("failed to decode seen tenders: %w", err)
	}
	return tenders, nil
}

// SaveSeen stores tenders as a JSON list under key
func (s *RedisStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	if tenders == nil {
		tenders = []domain.Tender{}
	}

	data, err := json.Marshal(tenders)
	if err != nil {
		return fmt.Errorf("failed to encode tenders: %w", err)
	}

	if err := s.client.Set(ctx, s.seenKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set seen tenders: %w", err)
	}
	return nil
}

// LoadLastURL returns the URL stored for key
func (s *RedisStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	url, err := s.client.Get(ctx, s.lastKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get last URL: %w", err)
	}
	return url, nil
}

// SaveLastURL overwrites the URL stored for key
func (s *RedisStore) SaveLastURL(ctx context.Context, key, url string) error {
	if err := s.client.Set(ctx, s.lastKey(key), url, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last URL: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
