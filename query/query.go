// Package query builds parameterized WHERE, ORDER BY, LIMIT and OFFSET
// fragments. Values are always bound through ? placeholders.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidIdentifier is recorded for column names that are not plain identifiers
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrInvalidArgument is recorded for negative limits and mismatched raw arguments
	ErrInvalidArgument = errors.New("invalid argument")
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ValidIdentifier reports whether s can be used as a column reference
func ValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && identifierRe.MatchString(s)
}

const (
	and = "AND"
	or  = "OR"
)

// Query accumulates predicates joined by AND unless Or is called in
// between. The first error is kept and returned by Err, later calls are
// ignored. A Query is not safe for concurrent use.
type Query struct {
	where     strings.Builder
	orderBy   []string
	limit     int
	hasLimit  bool
	offset    int
	hasOffset bool
	params    []Value
	connector string
	err       error
}

// New returns an empty query
func New() *Query {
	return &Query{connector: and}
}

// Or joins the next predicate with OR
func (q *Query) Or() *Query {
	q.connector = or
	return q
}

// And joins the next predicate with AND, the default
func (q *Query) And() *Query {
	q.connector = and
	return q
}

// Eq matches rows where column is equal to value
func (q *Query) Eq(column string, value interface{}) *Query { return q.compare(column, "=", value) }
// Ne matches rows where column is not equal to value
func (q *Query) Ne(column string, value interface{}) *Query { return q.compare(column, "!=", value) }
// Gt matches rows where column is greater than value
func (q *Query) Gt(column string, value interface{}) *Query { return q.compare(column, ">", value) }
// Lt matches rows where column is less than value
func (q *Query) Lt(column string, value interface{}) *Query { return q.compare(column, "<", value) }
// Ge matches rows where column is at least value
func (q *Query) Ge(column string, value interface{}) *Query { return q.compare(column, ">=", value) }
// Le matches rows where column is at most value
func (q *Query) Le(column string, value interface{}) *Query { return q.compare(column, "<=", value) }

// Like matches column against an SQL LIKE pattern
func (q *Query) Like(column, pattern string) *Query {
	return q.compare(column, "LIKE", pattern)
}

// IsNull adds column IS NULL
func (q *Query) IsNull(column string) *Query {
	if q.checkColumn(column) {
		q.appendPredicate(column + " IS NULL")
	}
	return q
}

// IsNotNull adds column IS NOT NULL
func (q *Query) IsNotNull(column string) *Query {
	if q.checkColumn(column) {
		q.appendPredicate(column + " IS NOT NULL")
	}
	return q
}

// Between adds column BETWEEN lo AND hi
func (q *Query) Between(column string, lo, hi interface{}) *Query {
	if !q.checkColumn(column) {
		return q
	}
	values, ok := q.convert(lo, hi)
	if !ok {
		return q
	}
	q.appendPredicate(column + " BETWEEN ? AND ?")
	q.params = append(q.params, values...)
	return q
}

// In adds column IN (...). With no values the predicate is always false.
func (q *Query) In(column string, values ...interface{}) *Query {
	return q.in(column, "IN", "1=0", values)
}

// NotIn adds column NOT IN (...). With no values the predicate is always true.
func (q *Query) NotIn(column string, values ...interface{}) *Query {
	return q.in(column, "NOT IN", "1=1", values)
}

// Raw adds a parenthesized expression with its own ? placeholders
func (q *Query) Raw(expr string, args ...interface{}) *Query {
	if q.err != nil {
		return q
	}
	if n := len(Placeholders(expr)); n != len(args) {
		q.err = fmt.Errorf("%w: %q has %d placeholders but %d args", ErrInvalidArgument, expr, n, len(args))
		return q
	}
	values, ok := q.convert(args...)
	if !ok {
		return q
	}
	q.appendPredicate("(" + expr + ")")
	q.params = append(q.params, values...)
	return q
}

// OrderBy appends a sort key, ascending when asc is true
func (q *Query) OrderBy(column string, asc bool) *Query {
	if !q.checkColumn(column) {
		return q
	}
	direction := "DESC"
	if asc {
		direction = "ASC"
	}
	q.orderBy = append(q.orderBy, column+" "+direction)
	return q
}

// Limit caps the number of rows returned. A negative n is an error.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		q.setErr(fmt.Errorf("%w: limit %d", ErrInvalidArgument, n))
		return q
	}
	q.limit, q.hasLimit = n, true
	return q
}

// Offset skips the first n rows. A negative n is an error.
func (q *Query) Offset(n int) *Query {
	if n < 0 {
		q.setErr(fmt.Errorf("%w: offset %d", ErrInvalidArgument, n))
		return q
	}
	q.offset, q.hasOffset = n, true
	return q
}

// WhereClause returns the predicate text without the WHERE keyword
func (q *Query) WhereClause() string {
	return q.where.String()
}

// OrderByClause returns " ORDER BY ..." or an empty string
func (q *Query) OrderByClause() string {
	if len(q.orderBy) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(q.orderBy, ", ")
}

// LimitClause returns " LIMIT n" or an empty string
func (q *Query) LimitClause() string {
	if !q.hasLimit {
		return ""
	}
	return " LIMIT " + strconv.Itoa(q.limit)
}

// OffsetClause returns " OFFSET n" or an empty string
func (q *Query) OffsetClause() string {
	if !q.hasOffset {
		return ""
	}
	return " OFFSET " + strconv.Itoa(q.offset)
}

// Params returns the bound values in placeholder order
func (q *Query) Params() []Value {
	return q.params
}

// Err returns the first error recorded while building
func (q *Query) Err() error {
	return q.err
}

func (q *Query) String() string {
	return q.WhereClause() + q.OrderByClause() + q.LimitClause() + q.OffsetClause()
}

func (q *Query) compare(column, op string, value interface{}) *Query {
	if !q.checkColumn(column) {
		return q
	}
	values, ok := q.convert(value)
	if !ok {
		return q
	}
	q.appendPredicate(column + " " + op + " ?")
	q.params = append(q.params, values...)
	return q
}

func (q *Query) in(column, op, empty string, values []interface{}) *Query {
	if !q.checkColumn(column) {
		return q
	}
	if len(values) == 0 {
		q.appendPredicate(empty)
		return q
	}
	converted, ok := q.convert(values...)
	if !ok {
		return q
	}
	q.appendPredicate(column + " " + op + " (" + strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ") + ")")
	q.params = append(q.params, converted...)
	return q
}

func (q *Query) appendPredicate(predicate string) {
	if q.err != nil {
		return
	}
	if q.connector == "" {
		q.connector = and
	}
	if q.where.Len() > 0 {
		q.where.WriteString(" " + q.connector + " ")
	}
	q.where.WriteString(predicate)
	q.connector = and
}

func (q *Query) checkColumn(column string) bool {
	if q.err != nil {
		return false
	}
	if !ValidIdentifier(column) {
		q.err = fmt.Errorf("%w: %q", ErrInvalidIdentifier, column)
		return false
	}
	return true
}

func (q *Query) convert(values ...interface{}) ([]Value, bool) {
	if q.err != nil {
		return nil, false
	}
	converted := make([]Value, len(values))
	for idx, v := range values {
		value, err := ValueOf(v)
		if err != nil {
			q.err = err
			return nil, false
		}
		converted[idx] = value
	}
	return converted, true
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// Values adapts a typed slice for In and NotIn
func Values[T any](values []T) []interface{} {
	result := make([]interface{}, len(values))
	for idx, v := range values {
		result[idx] = v
	}
	return result
}
