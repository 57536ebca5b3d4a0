package sqldriver

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// ResultSet reads *sql.Rows by column name. NULL reads as the zero value.
type ResultSet struct {
	rows    *sql.Rows
	columns []string
	index   map[string]int
	values  []interface{}
	err     error
}

func newResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}

	index := make(map[string]int, len(columns))
	for i, column := range columns {
		if _, ok := index[column]; !ok {
			index[column] = i
		}
	}

	return &ResultSet{
		rows:    rows,
		columns: columns,
		index:   index,
		values:  make([]interface{}, len(columns)),
	}, nil
}

func (r *ResultSet) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	dest := make([]interface{}, len(r.values))
	for i := range r.values {
		r.values[i] = nil
		dest[i] = &r.values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = err
		return false
	}
	return true
}

func (r *ResultSet) Columns() []string {
	return r.columns
}

func (r *ResultSet) value(column string) (interface{}, error) {
	if i, ok := r.index[column]; ok {
		return r.values[i], nil
	}
	for i, name := range r.columns {
		if strings.EqualFold(name, column) {
			return r.values[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

func (r *ResultSet) GetInt(column string) (int32, error) {
	v, err := r.GetInt64(column)
	return int32(v), err
}

func (r *ResultSet) GetInt64(column string) (int64, error) {
	v, err := r.value(column)
	if err != nil {
		return 0, err
	}
	return toInt64(column, v)
}

func (r *ResultSet) GetUInt(column string) (uint32, error) {
	v, err := r.value(column)
	if err != nil {
		return 0, err
	}
	u, err := toUint64(column, v)
	return uint32(u), err
}

func (r *ResultSet) GetString(column string) (string, error) {
	v, err := r.value(column)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case time.Time:
		return s.UTC().Format(timeFormat), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	}
	return fmt.Sprint(v), nil
}

func (r *ResultSet) GetBoolean(column string) (bool, error) {
	v, err := r.value(column)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case []byte:
		return parseBool(column, string(b))
	case string:
		return parseBool(column, b)
	}
	return false, convError(column, v, "bool")
}

func (r *ResultSet) GetDouble(column string) (float64, error) {
	v, err := r.value(column)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int64:
		return float64(f), nil
	case []byte:
		return parseFloat(column, string(f))
	case string:
		return parseFloat(column, f)
	}
	return 0, convError(column, v, "float64")
}

func (r *ResultSet) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *ResultSet) Close() error {
	return r.rows.Close()
}

func toInt64(column string, v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(column, string(n))
	case string:
		return parseInt(column, n)
	}
	return 0, convError(column, v, "int64")
}

func toUint64(column string, v interface{}) (uint64, error) {
	switch n := v.(type) {
	case []byte:
		return parseUint(column, string(n))
	case string:
		return parseUint(column, n)
	case uint64:
		return n, nil
	}
	i, err := toInt64(column, v)
	return uint64(i), err
}

// parseInt reinterprets values above the int64 range, as BIGINT UNSIGNED
// columns produce them
func parseInt(column, s string) (int64, error) {
	s = strings.TrimSpace(s)
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i, nil
	}
	if u, uerr := strconv.ParseUint(s, 10, 64); uerr == nil {
		return int64(u), nil
	}
	return 0, fmt.Errorf("column %s: %w", column, err)
}

func parseUint(column, s string) (uint64, error) {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return u, nil
}

func parseFloat(column, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return f, nil
}

func parseBool(column, s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("column %s: %w", column, err)
	}
	return b, nil
}

func convError(column string, v interface{}, to string) error {
	return fmt.Errorf("column %s: cannot convert %T to %s", column, v, to)
}
