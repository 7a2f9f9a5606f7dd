// Package logging provides the structured logger used across the POS service.
//
// Components create a named logger with NewLoggerV2 and log with Fields:
//
//	logger := logging.NewLoggerV2("order-service")
//	logger.Info("Order saved", logging.Fields{"order_id": id})
package logging

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured context for a log entry.
type Fields map[string]interface{}

// LoggerV2 is a component-scoped structured logger.
type LoggerV2 struct {
	component string
	zl        *zap.Logger
}

var (
	baseOnce sync.Once
	base     atomic.Pointer[zap.Logger]
)

// Configure replaces the process-wide base logger. It must be called before
// any component logger is created to take effect for that component.
func Configure(level, format string) {
	base.Store(build(level, format))
}

func root() *zap.Logger {
	if zl := base.Load(); zl != nil {
		return zl
	}
	baseOnce.Do(func() {
		base.CompareAndSwap(nil, build(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))
	})
	return base.Load()
}

func build(level, format string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "text") || strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// NewLoggerV2 creates a logger tagged with the given component name.
func NewLoggerV2(component string) *LoggerV2 {
	return &LoggerV2{
		component: component,
		zl:        root().With(zap.String("component", component)),
	}
}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() *LoggerV2 {
	return &LoggerV2{component: "nop", zl: zap.NewNop()}
}

// Component returns the component name of the logger.
func (l *LoggerV2) Component() string {
	return l.component
}

// With returns a child logger that always includes the given fields.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	return &LoggerV2{component: l.component, zl: l.zl.With(toZap(fields)...)}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, merge(fields)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, merge(fields)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, merge(fields)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.zl.Error(msg, merge(fields)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.zl.Fatal(msg, merge(fields)...)
}

// Sync flushes buffered entries.
func (l *LoggerV2) Sync() error {
	return l.zl.Sync()
}

// Infof logs a formatted message on the base logger.
func Infof(format string, args ...interface{}) {
	root().Sugar().Infof(format, args...)
}

// Info logs on the base logger.
func Info(msg string, fields ...Fields) {
	root().Info(msg, merge(fields)...)
}

func merge(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		out = append(out, toZap(f)...)
	}
	return out
}

func toZap(fields Fields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
