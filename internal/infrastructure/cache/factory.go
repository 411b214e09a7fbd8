package cache

import (
	"fmt"
	"io"

	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ViewCacheFactory creates view caches based on configuration
type ViewCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ViewCacheFactoryOption is a functional option for configuring the factory
type ViewCacheFactoryOption func(*ViewCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ViewCacheFactoryOption {
	return func(f *ViewCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ViewCacheFactoryOption {
	return func(f *ViewCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewViewCacheFactory creates a new factory
func NewViewCacheFactory(cfg config.RedisConfig, opts ...ViewCacheFactoryOption) *ViewCacheFactory {
	f := &ViewCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ClosableViewCache is a ViewCache that owns resources
type ClosableViewCache interface {
	shared.ViewCache
	io.Closer
}

// CreateRedisCache creates a Redis-backed view cache
func (f *ViewCacheFactory) CreateRedisCache() (ClosableViewCache, error) {
	c, err := NewRedisViewCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.redisConfig.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis view cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory view cache
func (f *ViewCacheFactory) CreateInMemoryCache() ClosableViewCache {
	return NewInMemoryViewCache(f.redisConfig.CacheTTL)
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed.
func (f *ViewCacheFactory) CreateCache() (ClosableViewCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory view cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis view cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for view cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory view cache. "+
		"Cached views will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
