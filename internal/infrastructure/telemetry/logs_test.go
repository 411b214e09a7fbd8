package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))

	core := lp.Core(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_NilCore(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.Core(zapcore.DebugLevel).Enabled(zapcore.FatalLevel))
}

func TestMinLevel(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := minLevel(inner, zapcore.WarnLevel)

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))

	logger := zap.New(core).With(zap.String("component", "scheduler"))
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("also kept")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "scheduler", entries[0].ContextMap()["component"])

	t.Run("cannot lower an inner core's level", func(t *testing.T) {
		strict, _ := observer.New(zapcore.ErrorLevel)
		assert.False(t, minLevel(strict, zapcore.DebugLevel).Enabled(zapcore.InfoLevel))
	})
}
