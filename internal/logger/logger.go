// Package logger provides the shared zap sugared logger used across the service.
// Call Init once at startup; GetLogger falls back to a development logger configured
// from LOG_LEVEL when Init was never called (tests, CLI tools).
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// Init builds the global logger for the given level and environment.
// Only the first call has an effect.
func Init(level, environment string) {
	once.Do(func() {
		logger = build(level, environment)
	})
}

// GetLogger returns the shared logger, initializing it from the environment if needed.
func GetLogger() *zap.SugaredLogger {
	once.Do(func() {
		logger = build(os.Getenv("LOG_LEVEL"), os.Getenv("PANTRY_SERVER_ENVIRONMENT"))
	})
	return logger
}

// Close flushes buffered log entries. Call it before the process exits.
func Close() error {
	if logger == nil {
		return nil
	}
	if err := logger.Sync(); err != nil && !isStdSyncError(err) {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

func build(levelStr, environment string) *zap.SugaredLogger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(levelStr))); err != nil || levelStr == "" {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := cfg.Build(zap.Fields(zap.String("service", "pantry-backend")))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return zapLogger.Sugar()
}

// isStdSyncError reports the harmless error returned when syncing a terminal
// or pipe attached to stdout/stderr.
func isStdSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

// MaskSecret keeps the first four characters of a credential for log output.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..."
}
