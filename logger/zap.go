package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/uorm/uorm/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Interface using zap
type ZapLogger struct {
	filter
	Logger *zap.Logger
}

// NewZapLogger wraps an existing zap logger
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{filter: newFilter(config), Logger: logger}
}

// NewZapProductionLogger builds a zap production logger whose level follows config
func NewZapProductionLogger(config Config) (Interface, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return NewZapLogger(logger, config), nil
}

func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Info) {
		l.Logger.Info(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Warn) {
		l.Logger.Warn(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Error) {
		l.Logger.Error(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

func (l *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	st, ok := l.statement(ctx, begin, fc, err)
	if !ok {
		return
	}

	var fields []zap.Field
	st.Each(func(key string, value interface{}) {
		if n, ok := value.(int64); ok {
			fields = append(fields, zap.Int64(key, n))
			return
		}
		fields = append(fields, zap.String(key, value.(string)))
	})
	if ce := l.Logger.Check(ZapLevel(st.Level), st.Message); ce != nil {
		ce.Write(fields...)
	}
}

// With returns a copy carrying extra fields
func (l *ZapLogger) With(fields ...zap.Field) *ZapLogger {
	newLogger := *l
	newLogger.Logger = l.Logger.With(fields...)
	return &newLogger
}

// ZapLevel converts LogLevel to zapcore.Level
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.DPanicLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
