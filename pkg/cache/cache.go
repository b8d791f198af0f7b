// Package cache invalidates downstream identifier-lookup caches when
// mappings change. Lookup caches are keyed per source; consumers
// repopulate lazily after invalidation.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// keyPrefix namespaces the identifier-lookup cache keys
const keyPrefix = "fern:mappings"

// Invalidator wraps the Redis client behind the reconcile package's
// cache invalidation hook. Created once per process.
type Invalidator struct {
	rdb    *redis.Client
	logger ectologger.Logger
}

// NewInvalidator creates a Redis-backed invalidator
func NewInvalidator(cfg Config, logger ectologger.Logger) (*Invalidator, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	return &Invalidator{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (i *Invalidator) Close() error {
	return i.rdb.Close()
}

// Ping checks if Redis is reachable
func (i *Invalidator) Ping(ctx context.Context) error {
	return i.rdb.Ping(ctx).Err()
}

// Invalidate drops the identifier-lookup cache for a source.
// Fire-and-forget: failures are logged and the reconciliation run
// proceeds; stale readers fall back to the store on miss TTLs.
func (i *Invalidator) Invalidate(ctx context.Context, source models.MappingSource) {
	key := fmt.Sprintf("%s:%s", keyPrefix, source)

	if err := i.rdb.Del(ctx, key).Err(); err != nil {
		i.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"key": key}).Warn("Failed to invalidate mapping cache")
		return
	}

	i.logger.WithContext(ctx).WithFields(map[string]any{"key": key}).Debug("Invalidated mapping cache")
}
