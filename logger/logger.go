// Package logger wraps zap with the small field-based API used across the
// dashboard, API and ingest binaries.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface is the logging surface handlers and services depend on.
type Interface interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(err error, fields ...Field)
	ErrorContext(ctx context.Context, err error, fields ...Field)
	With(fields ...Field) Interface
	Sync() error
}

// Field holds key-value to be written to log.
type Field struct {
	Key   string
	Value any
}

type requestIDKey struct{}

// WithRequestID stores the request id on ctx so ErrorContext can attach it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logger is a wrapper around zap.Logger.
type Logger struct {
	logger *zap.Logger
}

func levelOf(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a production JSON logger. environment "development" switches to
// the console encoder.
func New(level, environment string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(levelOf(level))
	cfg.EncoderConfig.MessageKey = "message"

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{logger: l}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{logger: l}
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (l *Logger) Debug(message string, fields ...Field) {
	l.logger.Debug(message, toZap(fields)...)
}

func (l *Logger) Info(message string, fields ...Field) {
	l.logger.Info(message, toZap(fields)...)
}

func (l *Logger) Warn(message string, fields ...Field) {
	l.logger.Warn(message, toZap(fields)...)
}

func (l *Logger) Error(err error, fields ...Field) {
	l.logger.Error(err.Error(), toZap(fields)...)
}

// ErrorContext logs err with the request id carried by ctx.
func (l *Logger) ErrorContext(ctx context.Context, err error, fields ...Field) {
	if id := RequestID(ctx); id != "" {
		fields = append(fields, Field{Key: "request_id", Value: id})
	}
	l.Error(err, fields...)
}

// With returns a child logger that always writes fields.
func (l *Logger) With(fields ...Field) Interface {
	return &Logger{logger: l.logger.With(toZap(fields)...)}
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}
