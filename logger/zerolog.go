package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/uorm/uorm/utils"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	filter
	Logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{filter: newFilter(config), Logger: logger}
}

// NewZerologConsoleLogger writes human readable lines to stdout
func NewZerologConsoleLogger(config Config) Interface {
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
		w.TimeFormat = time.RFC3339
		w.NoColor = !config.Colorful
	})
	logger := zerolog.New(consoleWriter).
		Level(ZerologLevel(config.LogLevel)).
		With().
		Timestamp().
		Logger()
	return NewZerologLogger(logger, config)
}

func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Info) {
		l.event(ctx, zerolog.InfoLevel).Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Warn) {
		l.event(ctx, zerolog.WarnLevel).Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Error) {
		l.event(ctx, zerolog.ErrorLevel).Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	st, ok := l.statement(ctx, begin, fc, err)
	if !ok {
		return
	}

	event := l.event(ctx, ZerologLevel(st.Level))
	st.Each(func(key string, value interface{}) {
		if n, ok := value.(int64); ok {
			event = event.Int64(key, n)
			return
		}
		event = event.Str(key, value.(string))
	})
	event.Msg(st.Message)
}

func (l *ZerologLogger) event(ctx context.Context, level zerolog.Level) *zerolog.Event {
	event := l.Logger.WithLevel(level)
	if ctx != nil {
		event = event.Ctx(ctx)
	}
	return event
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
