package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	mu     sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	// Environment selects the encoder: console for development, JSON otherwise
	Environment string
	// Level is the minimum enabled level (debug, info, warn, error)
	Level string
	// ServiceName is attached to every entry
	ServiceName string
}

// Init builds the global logger. It is safe to call more than once; the
// last call wins.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{Environment: "development", Level: "info"}
	}

	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return err
	}

	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}

	mu.Lock()
	global = logger
	mu.Unlock()
	return nil
}

// Get returns the global logger. Before Init it returns a no-op logger,
// so library code can log unconditionally.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// Sync flushes buffered log entries
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if global != nil {
		_ = global.Sync()
	}
}
