// Package logger holds the process-wide zap logger. Packages log through the
// package-level helpers so call sites stay terse.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Config controls logger initialization.
type Config struct {
	// Debug switches to the development encoder and enables debug output.
	Debug bool
}

// Init builds the global logger. Safe to call more than once; the last call
// wins.
func Init(cfg Config) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.CallerKey = "file"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
	}

	built, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap's stock configs only fail on unknown sink schemes; nothing to
		// do but keep the nop logger.
		return
	}

	mu.Lock()
	log = built
	mu.Unlock()
}

// L returns the current global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Debug logs at debug level.
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info logs at info level.
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn logs at warn level.
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Error logs at error level.
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
