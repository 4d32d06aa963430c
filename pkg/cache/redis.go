package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Config holds Redis connection settings.
type Config struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int
}

// RevocationRegistry tracks revoked access tokens in Redis.
type RevocationRegistry struct {
	client *redis.Client
}

// NewRevocationRegistry connects to Redis and verifies the connection
// with a ping before returning.
func NewRevocationRegistry(cfg Config) (*RevocationRegistry, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RevocationRegistry{client: client}, nil
}

// NewRevocationRegistryFromClient wraps an existing client. Used by tests
// with miniredis.
func NewRevocationRegistryFromClient(client *redis.Client) *RevocationRegistry {
	return &RevocationRegistry{client: client}
}

func revocationKey(tokenHash string) string {
	return fmt.Sprintf("revoked:%s", tokenHash)
}

// Revoke records a token hash until ttl elapses. Tokens that have already
// expired need no entry; callers pass the remaining lifetime.
func (r *RevocationRegistry) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revocationKey(tokenHash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to record revocation: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token hash is present in the registry.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	err := r.client.Get(ctx, revocationKey(tokenHash)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query revocation: %w", err)
	}
	return true, nil
}

// Ping checks Redis connectivity for health reporting.
func (r *RevocationRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *RevocationRegistry) Close() error {
	return r.client.Close()
}
