package logging

import (
	"log/slog"
	"os"
	"strings"
)

// StandardLogger provides a standardized structured logging interface for
// the service. All log output is JSON on stdout.
type StandardLogger struct {
	logger *slog.Logger
}

// NewStandardLogger creates a new standardized logger based on configuration.
func NewStandardLogger(logLevel string, environment string) *StandardLogger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: getSlogLevel(logLevel),
	}))

	return &StandardLogger{
		logger: logger.With("environment", environment),
	}
}

// WithComponent creates a logger with component context.
func (l *StandardLogger) WithComponent(componentName string) *slog.Logger {
	return l.logger.With("component", componentName)
}

// WithOperation creates a logger with operation context.
func (l *StandardLogger) WithOperation(operationName string) *slog.Logger {
	return l.logger.With("operation", operationName)
}

// WithRequestID creates a logger with request ID context.
func (l *StandardLogger) WithRequestID(requestID string) *slog.Logger {
	return l.logger.With("request_id", requestID)
}

// WithCommodity creates a logger with commodity context.
func (l *StandardLogger) WithCommodity(commodity string) *slog.Logger {
	return l.logger.With("commodity", commodity)
}

// WithError creates a logger with error context.
func (l *StandardLogger) WithError(err error) *slog.Logger {
	if err == nil {
		return l.logger
	}
	return l.logger.With("error", err.Error())
}

// LogStartup logs application startup information.
func (l *StandardLogger) LogStartup(serviceName string, version string, port int) {
	l.logger.Info("service starting",
		"service", serviceName,
		"version", version,
		"port", port,
	)
}

// LogShutdown logs application shutdown information.
func (l *StandardLogger) LogShutdown(serviceName string, reason string) {
	l.logger.Info("service shutting down",
		"service", serviceName,
		"reason", reason,
	)
}

// LogCacheOperation logs a cache operation with its outcome.
func (l *StandardLogger) LogCacheOperation(operation string, key string, hit bool, durationMs int64) {
	l.logger.Debug("cache operation",
		"operation", operation,
		"key", key,
		"hit", hit,
		"duration_ms", durationMs,
	)
}

// Logger returns the underlying slog.Logger.
func (l *StandardLogger) Logger() *slog.Logger {
	return l.logger
}

func getSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
