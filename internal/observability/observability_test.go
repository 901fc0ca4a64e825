package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"WARN", false, true},
		{"", false, true},
		{"nonsense", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.warn, logger.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestPrintfAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a := NewPrintfAdapter(zap.New(core), zapcore.ErrorLevel)

	a.Printf("write to %s failed: %d", "topic", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "write to topic failed: 3", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestInitTracerProvider_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), "storefront", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
