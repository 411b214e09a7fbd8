package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welth/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, CacheTTL: time.Minute}
}

func TestViewCacheFactory_CreateCache(t *testing.T) {
	t.Run("redis disabled uses in-memory", func(t *testing.T) {
		f := NewViewCacheFactory(config.RedisConfig{CacheTTL: time.Minute})
		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryViewCache{}, c)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewViewCacheFactory(unreachableRedis(), WithLogger(zap.New(core)))

		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()

		assert.IsType(t, &InMemoryViewCache{}, c)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewViewCacheFactory(unreachableRedis(), WithInMemoryFallback(false))

		c, err := f.CreateCache()
		assert.Nil(t, c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
