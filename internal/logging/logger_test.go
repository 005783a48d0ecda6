package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(level)
			require.NoError(t, err)
			require.NotNil(t, logger)

			want, _ := zapcore.ParseLevel(level)
			assert.True(t, logger.Core().Enabled(want))
			assert.False(t, logger.Core().Enabled(want-1))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
