package utils

import (
	"strings"
	"testing"
	"time"
)

func TestFileWithLineNum(t *testing.T) {
	if file := FileWithLineNum(); !strings.Contains(file, "utils_test.go") {
		t.Errorf("expected caller in utils_test.go, got %v", file)
	}
}

func TestToString(t *testing.T) {
	results := []struct {
		value interface{}
		want  string
	}{
		{nil, ""},
		{"name", "name"},
		{[]byte("bytes"), "bytes"},
		{int8(-8), "-8"},
		{int32(32), "32"},
		{int64(-64), "-64"},
		{uint(7), "7"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{float32(1.5), "1.5"},
		{2.25, "2.25"},
		{true, "true"},
		{time.Second, "1s"},
	}

	for _, result := range results {
		if got := ToString(result.value); got != result.want {
			t.Errorf("ToString(%#v) = %q, want %q", result.value, got, result.want)
		}
	}
}
