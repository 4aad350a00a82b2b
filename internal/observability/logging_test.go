package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/gs-sport/storefront/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	app := config.AppConfig{Name: "storefront", Env: "development"}

	logger, err := NewLogger(config.LoggerConfig{Level: "debug"}, app)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "loud", Format: "console"}, app)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
