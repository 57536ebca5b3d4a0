package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uorm/uorm/utils"
)

type slogLogger struct {
	filter
	Logger *slog.Logger
}

// NewSlogLogger adapts a log/slog logger
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &slogLogger{filter: newFilter(config), Logger: logger}
}

func (l *slogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Info) {
		l.log(ctx, slog.LevelInfo, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Warn) {
		l.log(ctx, slog.LevelWarn, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Error) {
		l.log(ctx, slog.LevelError, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	st, ok := l.statement(ctx, begin, fc, err)
	if !ok {
		return
	}

	var attrs []slog.Attr
	st.Each(func(key string, value interface{}) {
		// the caller is carried by the record source
		if key != "file" {
			attrs = append(attrs, slog.Any(key, value))
		}
	})
	l.log(ctx, slogLevel(st.Level), st.Message, slog.Attr{Key: "trace", Value: slog.GroupValue(attrs...)})
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	r.Add(args...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case Error:
		return slog.LevelError
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
