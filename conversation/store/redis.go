package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetpotato0/agriadvisor/config"
	"github.com/sweetpotato0/agriadvisor/conversation"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
)

// RedisStore implements conversation.Store using Redis. Keys expire at
// the staleness window, so Redis handles most stale cleanup itself; the
// lazy delete on read covers the rest.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for state keys
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "agriadvisor:conversation:",
		TTL:    conversation.StaleAfter,
	}
}

// Validate checks the connection configuration.
func (c *RedisConfig) Validate() error {
	return config.NewValidator().
		RequireNonEmpty("addr", c.Addr).
		ValidateDBNumber("db", c.DB).
		RequirePositiveDuration("ttl", c.TTL.Seconds()).
		Err()
}

// NewRedisStore creates a Redis-backed conversation store. A nil config
// uses defaults.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

func (s *RedisStore) key(farmerID string) string {
	return s.prefix + farmerID
}

// Get returns the farmer's state.
func (s *RedisStore) Get(ctx context.Context, farmerID string) (*conversation.State, error) {
	data, err := s.client.Get(ctx, s.key(farmerID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("conversation state for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	state := &conversation.State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// Save creates or replaces the farmer's state.
func (s *RedisStore) Save(ctx context.Context, state *conversation.State) error {
	if state == nil || state.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.FarmerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store state in Redis: %w", err)
	}
	return nil
}

// Delete removes the farmer's state. Absent state is not an error.
func (s *RedisStore) Delete(ctx context.Context, farmerID string) error {
	if err := s.client.Del(ctx, s.key(farmerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete state from Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
