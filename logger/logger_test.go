package logger

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(level LogLevel) (*bytes.Buffer, Interface) {
	var buf bytes.Buffer
	return &buf, New(log.New(&buf, "", 0), Config{LogLevel: level, SlowThreshold: 100 * time.Millisecond})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Silent, ParseLevel("silent"))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel("info"))
	assert.Equal(t, Warn, ParseLevel("warn"))
	assert.Equal(t, Warn, ParseLevel(""))
}

func TestLogger_Levels(t *testing.T) {
	ctx := context.Background()
	buf, l := newBufferLogger(Warn)

	l.Info(ctx, "pool %s", "ready")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "failed to create initial connection #%d", 2)
	assert.Contains(t, buf.String(), "[warn] failed to create initial connection #2")
	assert.Contains(t, buf.String(), "logger_test.go")

	buf.Reset()
	l.LogMode(Info).Info(ctx, "pool %s", "ready")
	assert.Contains(t, buf.String(), "[info] pool ready")
}

func TestLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("info", func(t *testing.T) {
		buf, l := newBufferLogger(Info)
		l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT * FROM `products`", 3 }, nil)
		assert.Contains(t, buf.String(), "[rows:3] SELECT * FROM `products`")
	})

	t.Run("unknown rows", func(t *testing.T) {
		buf, l := newBufferLogger(Info)
		l.Trace(ctx, time.Now(), func() (string, int64) { return "TRUNCATE TABLE `products`", -1 }, nil)
		assert.Contains(t, buf.String(), "[rows:-]")
	})

	t.Run("slow", func(t *testing.T) {
		buf, l := newBufferLogger(Warn)
		l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
		assert.Contains(t, buf.String(), "SLOW SQL >= 100ms")
	})

	t.Run("error", func(t *testing.T) {
		buf, l := newBufferLogger(Error)
		l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT broken", 0 }, errors.New("syntax error"))
		assert.Contains(t, buf.String(), "syntax error")
		assert.Contains(t, buf.String(), "SELECT broken")
	})

	t.Run("silent", func(t *testing.T) {
		buf, l := newBufferLogger(Silent)
		called := false
		l.Trace(ctx, time.Now(), func() (string, int64) { called = true; return "", 0 }, errors.New("ignored"))
		assert.Empty(t, buf.String())
		assert.False(t, called)
	})
}

func TestLogger_ParamsFilter(t *testing.T) {
	l := New(log.New(&bytes.Buffer{}, "", 0), Config{ParameterizedQueries: true})
	sql, params := l.(ParamsFilter).ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	l = New(log.New(&bytes.Buffer{}, "", 0), Config{})
	_, params = l.(ParamsFilter).ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []interface{}{1}, params)
}
