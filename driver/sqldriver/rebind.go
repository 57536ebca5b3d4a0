package sqldriver

import (
	"strconv"
	"strings"

	"github.com/uorm/uorm/query"
)

// RebindDollar rewrites ? placeholders to $1, $2, ... leaving quoted
// strings and identifiers untouched
func RebindDollar(sql string) string {
	offsets := query.Placeholders(sql)
	if len(offsets) == 0 {
		return sql
	}

	var (
		b    strings.Builder
		last int
	)
	b.Grow(len(sql) + 2*len(offsets))
	for n, offset := range offsets {
		b.WriteString(sql[last:offset])
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n + 1))
		last = offset + 1
	}
	b.WriteString(sql[last:])
	return b.String()
}

func countPlaceholders(sql string) int {
	return len(query.Placeholders(sql))
}
