package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		logger, err := New(dev, "debug")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(false, "loud")
	assert.Error(t, err)
}
