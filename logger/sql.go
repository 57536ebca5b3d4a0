package logger

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/uorm/uorm/utils"
)

const tmFmtWithMS = "2006-01-02 15:04:05.999"

// NumericPlaceholder matches $1 style placeholders
var NumericPlaceholder = regexp.MustCompile(`\$(\d+)`)

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ExplainSQL inlines vars into sql for logging. The result is never executed.
func ExplainSQL(sql string, numericPlaceholder *regexp.Regexp, escaper string, vars ...interface{}) string {
	formatted := make([]string, len(vars))
	for idx, v := range vars {
		if valuer, ok := v.(driver.Valuer); ok {
			v, _ = valuer.Value()
		}

		switch v := v.(type) {
		case nil:
			formatted[idx] = "NULL"
		case bool:
			formatted[idx] = strconv.FormatBool(v)
		case time.Time:
			if v.IsZero() {
				formatted[idx] = escaper + "0000-00-00 00:00:00" + escaper
			} else {
				formatted[idx] = escaper + v.Format(tmFmtWithMS) + escaper
			}
		case []byte:
			if s := string(v); isPrintable(s) {
				formatted[idx] = escaper + strings.ReplaceAll(s, escaper, escaper+escaper) + escaper
			} else {
				formatted[idx] = escaper + "<binary>" + escaper
			}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			formatted[idx] = utils.ToString(v)
		case float32:
			formatted[idx] = strconv.FormatFloat(float64(v), 'f', -1, 32)
		case float64:
			formatted[idx] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			formatted[idx] = escaper + strings.ReplaceAll(v, escaper, escaper+escaper) + escaper
		default:
			formatted[idx] = escaper + strings.ReplaceAll(fmt.Sprint(v), escaper, escaper+escaper) + escaper
		}
	}

	if numericPlaceholder == nil {
		var idx int
		var b strings.Builder
		b.Grow(len(sql))
		for _, c := range []byte(sql) {
			if c == '?' && idx < len(formatted) {
				b.WriteString(formatted[idx])
				idx++
				continue
			}
			b.WriteByte(c)
		}
		return b.String()
	}

	return numericPlaceholder.ReplaceAllStringFunc(sql, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(formatted) {
			return m
		}
		return formatted[n-1]
	})
}
