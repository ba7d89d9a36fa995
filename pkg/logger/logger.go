// Package logger is the structured logger of the API, the worker and the
// CLI. Records carry the request identity found in the context plus typed
// fields for the ledgers' ids and amounts.
package logger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "laluna/internal/core/context"
)

// Logger is a zap SugaredLogger. Key-value pairs and the zap.Field helpers
// in fields.go can be mixed in the same call.
type Logger struct {
	*zap.SugaredLogger
}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // colored console output instead of JSON
}

// New builds a logger. The first logger built also becomes the fallback for
// contexts that carry none.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	l := &Logger{z.Sugar()}
	fallback.CompareAndSwap(nil, l)
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var fallback atomic.Pointer[Logger]

func defaultLogger() *Logger {
	if l := fallback.Load(); l != nil {
		return l
	}
	return Nop()
}

// WithContext adds the request and user identity found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var fields []any
	if trace := appctx.GetTrace(ctx); trace != nil {
		fields = append(fields, TraceID(trace.TraceID), RequestID(trace.RequestID))
	}
	if user := appctx.GetUser(ctx); user != nil {
		fields = append(fields, UserID(user.UserID), zap.String("username", user.Username))
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

// WithComponent names the subsystem writing the records.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With(zap.String("component", name))}
}

type loggerKey struct{}

// WithLogger stores l in ctx for the package-level helpers.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger of ctx enriched with its request identity.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	if !ok {
		l = defaultLogger()
	}
	return l.WithContext(ctx)
}

// Debug logs at debug level through the logger of ctx.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

// Info logs at info level through the logger of ctx.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

// Warn logs at warn level through the logger of ctx.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

// Error logs at error level through the logger of ctx.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
