package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with additional context.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init initializes the global logger from config.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "callscribe"
	}
	globalLogger = New(&cfg, name)

	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
}

// New creates a new logger instance with configuration.
func New(cfg *Config, serviceName string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := outputWriter(cfg.Output)

	var zl zerolog.Logger
	if f := strings.ToLower(cfg.Format); f == "console" || f == "pretty" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(output)
	}

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{
		logger:  zl,
		service: serviceName,
	}
}

// NewDefault creates a logger with default configuration.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{
		Level:     "info",
		Format:    "console",
		Output:    "stdout",
		Timestamp: true,
	}
	return New(cfg, serviceName)
}

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

// ContextWithRequestID stores a request ID for later extraction by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey("request_id"), id)
}

// ContextWithSessionID stores a session ID for later extraction by WithContext.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey("session_id"), id)
}

// WithContext returns a logger enriched with request/session IDs from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.logger.With()

	if v := ctx.Value(contextKey("request_id")); v != nil {
		zc = zc.Str(FieldRequestID, fmt.Sprintf("%v", v))
	}
	if v := ctx.Value(contextKey("session_id")); v != nil {
		zc = zc.Str(FieldSessionID, fmt.Sprintf("%v", v))
	}

	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:  l.logger.With().Err(err).Logger(),
		service: l.service,
	}
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	event := l.logger.Fatal()
	addFields(event, fields...)
	event.Msg(msg)
}

// --- Global logger ---

var globalLogger *Logger

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("callscribe")
	}
	return globalLogger
}

// Package-level convenience functions delegate to the global logger.

func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

func Fatal(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Fatal(msg, fields...)
}

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// --- internal helpers ---

func addFields(event *zerolog.Event, fields ...map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}

func outputWriter(output string) *os.File {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}
