package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/orrn/printbridge/internal/config"
	"github.com/orrn/printbridge/internal/logging"
)

func TestNew(t *testing.T) {
	logger, err := logging.New(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Console(t *testing.T) {
	logger, err := logging.New(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New(config.LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
