package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the profile record as a JSON string in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisOptions configures a RedisStore
type RedisOptions struct {
	// KeyPrefix is prepended to types.ProfileStorageKey, e.g. "jobfit:".
	KeyPrefix string
	// TTL expires the record; zero keeps it until overwritten.
	TTL time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts RedisOptions) *RedisStore {
	return &RedisStore{
		client: client,
		key:    opts.KeyPrefix + types.ProfileStorageKey,
		ttl:    opts.TTL,
	}
}

// DialRedis connects to the server described by a redis:// URL and checks it responds.
func DialRedis(ctx context.Context, url string, opts RedisOptions) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	redisOpts.DialTimeout = 5 * time.Second
	redisOpts.ReadTimeout = 3 * time.Second
	redisOpts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(client, opts), nil
}

// Put replaces the stored profile.
func (s *RedisStore) Put(ctx context.Context, profile *types.ExtractedProfile) error {
	if profile == nil {
		return fmt.Errorf("profile is required")
	}
	value, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.client.Set(ctx, s.key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Get returns the stored profile or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context) (*types.ExtractedProfile, error) {
	value, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile types.ExtractedProfile
	if err := json.Unmarshal(value, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode stored profile: %w", err)
	}
	return &profile, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
