package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/uorm/uorm/utils"
)

// Tags name the pool and mapper operation behind a traced statement
type Tags struct {
	Pool string
	Op   string
}

type tagsKey struct{}

// WithTags attaches tags to ctx, the structured adapters log them as fields
func WithTags(ctx context.Context, tags Tags) context.Context {
	return context.WithValue(ctx, tagsKey{}, tags)
}

// TagsFrom returns the tags attached by WithTags
func TagsFrom(ctx context.Context) (Tags, bool) {
	if ctx == nil {
		return Tags{}, false
	}
	tags, ok := ctx.Value(tagsKey{}).(Tags)
	return tags, ok
}

// Statement is one traced statement, classified for a structured backend
type Statement struct {
	Level   LogLevel
	Message string
	File    string
	SQL     string
	// Rows is -1 when the driver did not report a count
	Rows      int64
	Elapsed   time.Duration
	Threshold time.Duration
	Err       error
	Tags      Tags
}

// Duration formats Elapsed in milliseconds
func (s Statement) Duration() string {
	return fmt.Sprintf("%.3fms", float64(s.Elapsed.Nanoseconds())/1e6)
}

// Each visits the populated fields in a fixed order. Values are string or int64.
func (s Statement) Each(fn func(key string, value interface{})) {
	if s.File != "" {
		fn("file", s.File)
	}
	fn("duration", s.Duration())
	fn("sql", s.SQL)
	if s.Rows != -1 {
		fn("rows", s.Rows)
	}
	if s.Tags.Pool != "" {
		fn("pool", s.Tags.Pool)
	}
	if s.Tags.Op != "" {
		fn("op", s.Tags.Op)
	}
	if s.Threshold != 0 {
		fn("slow_threshold", s.Threshold.String())
	}
	if s.Err != nil {
		fn("error", s.Err.Error())
	}
}

// filter carries the level state shared by the structured adapters
type filter struct {
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

func newFilter(config Config) filter {
	if config.LogLevel == 0 {
		config.LogLevel = DefaultLogLevel
	}
	return filter{
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

func (f filter) enabled(level LogLevel) bool {
	return f.LogLevel >= level
}

// statement classifies a finished statement; false means nothing is logged
// and fc is not called.
func (f filter) statement(ctx context.Context, begin time.Time, fc func() (string, int64), err error) (Statement, bool) {
	if f.LogLevel <= Silent {
		return Statement{}, false
	}

	st := Statement{Elapsed: time.Since(begin), Err: err}
	switch {
	case err != nil && f.LogLevel >= Error:
		st.Level, st.Message = Error, "SQL failed"
	case f.SlowThreshold != 0 && st.Elapsed > f.SlowThreshold && f.LogLevel >= Warn:
		st.Level, st.Message, st.Threshold = Warn, "SLOW SQL executed", f.SlowThreshold
	case f.LogLevel >= Info:
		st.Level, st.Message = Info, "SQL executed"
	default:
		return Statement{}, false
	}

	st.SQL, st.Rows = fc()
	st.Tags, _ = TagsFrom(ctx)
	st.File = utils.FileWithLineNum()
	return st, true
}

// ParamsFilter drops bound values when parameterized output is configured
func (f filter) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if f.Parameterized {
		return sql, nil
	}
	return sql, params
}
