package logging

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			core := build(tt.level, "json").Core()
			assert.True(t, core.Enabled(tt.want))
			assert.False(t, core.Enabled(tt.want-1))
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &LoggerV2{component: "checkout", zl: zap.New(core).With(zap.String("component", "checkout"))}

	child := logger.With(Fields{"user_id": "u1"})
	child.Info("Order saved", Fields{"order_id": "o1"})
	logger.Debug("dropped")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Order saved", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "checkout", ctx["component"])
	assert.Equal(t, "u1", ctx["user_id"])
	assert.Equal(t, "o1", ctx["order_id"])
	assert.Equal(t, "checkout", child.Component())
}

func TestConfigureConcurrentWithLoggers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Configure("error", "json")
		}()
		go func() {
			defer wg.Done()
			NewLoggerV2("worker").Debug("tick")
		}()
	}
	wg.Wait()

	assert.False(t, root().Core().Enabled(zapcore.WarnLevel))
}
