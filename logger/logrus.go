package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uorm/uorm/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	filter
	Logger *logrus.Logger
}

// NewLogrusLogger wraps an existing logrus logger
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{filter: newFilter(config), Logger: logger}
}

func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.Logger.WithContext(ctx)
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Info) {
		l.entry(ctx).WithField("file", utils.FileWithLineNum()).Infof(msg, data...)
	}
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Warn) {
		l.entry(ctx).WithField("file", utils.FileWithLineNum()).Warnf(msg, data...)
	}
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Error) {
		l.entry(ctx).WithField("file", utils.FileWithLineNum()).Errorf(msg, data...)
	}
}

func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	st, ok := l.statement(ctx, begin, fc, err)
	if !ok {
		return
	}

	fields := logrus.Fields{}
	st.Each(func(key string, value interface{}) { fields[key] = value })
	l.entry(ctx).WithFields(fields).Log(LogrusLevel(st.Level), st.Message)
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
