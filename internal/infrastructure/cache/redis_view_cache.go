package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/welth/backend/internal/domain/shared"
)

const defaultKeyPrefix = "welth:views:"

// errStaleView aborts a Set whose version was moved on by Invalidate
var errStaleView = errors.New("view version changed")

// RedisViewCache implements ViewCache with one Redis hash per user.
// Each field is a view and the hash expires as a whole. A counter next to
// the hash holds the user's version: Invalidate increments it and deletes
// the hash, and Set writes under WATCH on the counter. Both keys share a
// hash tag so they live in the same cluster slot.
type RedisViewCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisViewCache connects to Redis and verifies the connection
func NewRedisViewCache(cfg RedisConfig, ttl time.Duration) (*RedisViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisViewCacheWithClient(client, "", ttl), nil
}

// NewRedisViewCacheWithClient creates a cache on an existing client
func NewRedisViewCacheWithClient(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisViewCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisViewCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisViewCache) key(userID uuid.UUID) string {
	return c.keyPrefix + "{" + userID.String() + "}"
}

func (c *RedisViewCache) versionKey(userID uuid.UUID) string {
	return c.key(userID) + ":version"
}

// readVersion returns the stored version; a missing counter is version 0
func readVersion(cmd *redis.StringCmd) (shared.ViewVersion, error) {
	v, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return shared.ViewVersion(v), err
}

// Get loads a cached view into dest
func (c *RedisViewCache) Get(ctx context.Context, userID uuid.UUID, view string, dest any) (shared.ViewVersion, bool, error) {
	pipe := c.client.Pipeline()
	viewCmd := pipe.HGet(ctx, c.key(userID), view)
	versionCmd := pipe.Get(ctx, c.versionKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, fmt.Errorf("failed to read cached view %s: %w", view, err)
	}

	version, err := readVersion(versionCmd)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read view version: %w", err)
	}
	raw, err := viewCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return version, false, fmt.Errorf("failed to read cached view %s: %w", view, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return version, false, fmt.Errorf("failed to decode cached view %s: %w", view, err)
	}
	return version, true, nil
}

// Set stores a view read at version and refreshes the user's expiry.
// Nothing is written when the version has moved on.
func (c *RedisViewCache) Set(ctx context.Context, userID uuid.UUID, view string, version shared.ViewVersion, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode view %s: %w", view, err)
	}

	key, versionKey := c.key(userID), c.versionKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(tx.Get(ctx, versionKey))
		if err != nil {
			return err
		}
		if current != version {
			return errStaleView
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, view, raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil, errors.Is(err, errStaleView), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to cache view %s: %w", view, err)
	}
}

// Invalidate drops every cached view of the user and moves the version on.
// The counter lives for one TTL after the last invalidation.
func (c *RedisViewCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	versionKey := c.versionKey(userID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, versionKey)
	pipe.Expire(ctx, versionKey, c.ttl)
	pipe.Del(ctx, c.key(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate views: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisViewCache) Close() error {
	return c.client.Close()
}

var _ shared.ViewCache = (*RedisViewCache)(nil)
