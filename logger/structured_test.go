package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterStatement(t *testing.T) {
	ctx := WithTags(context.Background(), Tags{Pool: "primary", Op: "save"})
	f := newFilter(Config{LogLevel: Warn, SlowThreshold: 100 * time.Millisecond})

	called := false
	_, ok := f.statement(ctx, time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}, nil)
	assert.False(t, ok, "fast statements are below warn")
	assert.False(t, called, "sql must not be rendered when nothing is logged")

	st, ok := f.statement(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.True(t, ok)
	assert.Equal(t, Warn, st.Level)
	assert.Equal(t, "SLOW SQL executed", st.Message)
	assert.Equal(t, 100*time.Millisecond, st.Threshold)
	assert.Equal(t, Tags{Pool: "primary", Op: "save"}, st.Tags)

	st, ok = f.statement(context.Background(), time.Now(), func() (string, int64) { return "SELECT x", -1 }, errors.New("no such column"))
	require.True(t, ok)
	assert.Equal(t, Error, st.Level)
	assert.Equal(t, Tags{}, st.Tags)
}

func TestStatementEach(t *testing.T) {
	st := Statement{
		SQL:     "DELETE FROM `products`",
		Rows:    -1,
		Elapsed: 1500 * time.Microsecond,
		Err:     errors.New("locked"),
		Tags:    Tags{Op: "truncate"},
	}

	var keys []string
	values := map[string]interface{}{}
	st.Each(func(key string, value interface{}) {
		keys = append(keys, key)
		values[key] = value
	})

	assert.Equal(t, []string{"duration", "sql", "op", "error"}, keys)
	assert.Equal(t, "1.500ms", values["duration"])
	assert.Equal(t, "locked", values["error"])
}

func TestTagsFrom(t *testing.T) {
	_, ok := TagsFrom(context.Background())
	assert.False(t, ok)

	//nolint:staticcheck
	_, ok = TagsFrom(nil)
	assert.False(t, ok)

	tags, ok := TagsFrom(WithTags(context.Background(), Tags{Pool: "reports"}))
	assert.True(t, ok)
	assert.Equal(t, "reports", tags.Pool)
}
