//go:build unix

package utils

import "testing"

func TestSourceDir(t *testing.T) {
	results := []struct {
		File   string
		Result string
	}{
		{"/home/dev/go/pkg/mod/github.com/uorm/uorm@v0.4.0/utils/utils.go", "/home/dev/go/pkg/mod/github.com/uorm/uorm@v0.4.0/"},
		{"/src/uorm/utils/utils.go", "/src/uorm/"},
	}

	for idx, result := range results {
		if dir := sourceDir(result.File); dir != result.Result {
			t.Errorf("case #%v: expected %v, got %v", idx, result.Result, dir)
		}
	}
}
