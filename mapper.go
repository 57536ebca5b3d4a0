package uorm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/logger"
	"github.com/uorm/uorm/query"
	"github.com/uorm/uorm/schema"
)

var errNilRecord = errors.New("nil record")

// MapperOption configures a Mapper or Migrator
type MapperOption func(*mapperOptions)

type mapperOptions struct {
	registry *schema.Registry
	logger   logger.Interface
}

func newMapperOptions(pool *Pool, opts []MapperOption) mapperOptions {
	o := mapperOptions{registry: schema.Default, logger: pool.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRegistry resolves record types in reg instead of schema.Default
func WithRegistry(reg *schema.Registry) MapperOption {
	return func(o *mapperOptions) { o.registry = reg }
}

// WithMapperLogger overrides the pool logger
func WithMapperLogger(l logger.Interface) MapperOption {
	return func(o *mapperOptions) { o.logger = l }
}

// Mapper performs CRUD for one registered record type. Every call borrows
// its own connection; calls are not atomic with each other.
type Mapper[T any] struct {
	session
	table *schema.Table
}

// NewMapper fails with a *MappingError if T is not registered
func NewMapper[T any](pool *Pool, opts ...MapperOption) (*Mapper[T], error) {
	o := newMapperOptions(pool, opts)
	table, err := schema.Lookup[T](o.registry)
	if err != nil {
		return nil, &MappingError{Type: typeName[T](), Err: err}
	}
	return &Mapper[T]{session: session{pool: pool, logger: o.logger}, table: table}, nil
}

// Table returns the mapped table
func (m *Mapper[T]) Table() *schema.Table {
	return m.table
}

func (m *Mapper[T]) quote(name string) string {
	return m.pool.Dialect().QuoteIdentifier(name)
}

func (m *Mapper[T]) mappingError(err error) error {
	return &MappingError{Type: m.table.ModelType.String(), Err: err}
}

// Save inserts record. Auto-increment columns, and blank columns that
// have a DEFAULT, are left to the database; a generated id is written back.
func (m *Mapper[T]) Save(ctx context.Context, record *T) error {
	if record == nil {
		return m.mappingError(errNilRecord)
	}

	rv := reflect.ValueOf(record)
	dialect := m.pool.Dialect()

	var (
		columns []string
		args    []query.Value
	)
	for _, field := range m.table.Fields {
		if field.AutoIncrement || (field.HasDefaultValue && field.IsBlank(rv)) {
			continue
		}
		value, err := query.ValueOf(field.ValueOf(rv))
		if err != nil {
			return m.mappingError(err)
		}
		columns = append(columns, m.quote(field.DBName))
		args = append(args, value)
	}

	var sql strings.Builder
	sql.WriteString("INSERT INTO ")
	sql.WriteString(m.quote(m.table.Name))
	if len(columns) == 0 {
		sql.WriteByte(' ')
		sql.WriteString(dialect.DefaultValuesSQL())
	} else {
		sql.WriteString(" (")
		sql.WriteString(strings.Join(columns, ", "))
		sql.WriteString(") VALUES (")
		writePlaceholders(&sql, len(columns))
		sql.WriteByte(')')
	}

	autoField := m.table.AutoIncrementField
	returning := autoField != nil && dialect.SupportsReturningID()
	if returning {
		sql.WriteString(dialect.LastInsertIDSQL(autoField.DBName))
	}

	var setErr error
	err := m.prepared(ctx, "save", sql.String(), args, func(stmt driver.PreparedStatement) (int64, error) {
		if returning {
			rs, err := stmt.ExecuteQuery(ctx)
			if err != nil {
				return -1, err
			}
			defer rs.Close()

			if rs.Next() {
				id, err := rs.GetInt64(rs.Columns()[0])
				if err != nil {
					return 1, err
				}
				setErr = autoField.Set(rv, id)
			}
			return 1, rs.Err()
		}

		res, err := stmt.ExecuteUpdate(ctx)
		if err != nil {
			return -1, err
		}
		if autoField != nil {
			if id, err := res.LastInsertID(); err == nil && id > 0 {
				setErr = autoField.Set(rv, id)
			}
		}
		return res.RowsAffected()
	})
	if err != nil {
		return err
	}
	if setErr != nil {
		return m.mappingError(setErr)
	}
	return nil
}

// Update writes every non primary key column, matching on the primary keys
func (m *Mapper[T]) Update(ctx context.Context, record *T) error {
	if record == nil {
		return m.mappingError(errNilRecord)
	}
	if len(m.table.PrimaryFields) == 0 {
		return m.mappingError(ErrMissingPrimaryKey)
	}

	rv := reflect.ValueOf(record)

	var (
		sets, keys       []string
		setArgs, keyArgs []query.Value
	)
	for _, field := range m.table.Fields {
		value, err := query.ValueOf(field.ValueOf(rv))
		if err != nil {
			return m.mappingError(err)
		}
		if field.PrimaryKey {
			keys = append(keys, m.quote(field.DBName)+" = ?")
			keyArgs = append(keyArgs, value)
		} else {
			sets = append(sets, m.quote(field.DBName)+" = ?")
			setArgs = append(setArgs, value)
		}
	}
	if len(sets) == 0 {
		return m.mappingError(ErrNoUpdatableColumns)
	}

	sql := "UPDATE " + m.quote(m.table.Name) + " SET " + strings.Join(sets, ", ") + " WHERE " + strings.Join(keys, " AND ")
	return m.prepared(ctx, "update", sql, append(setArgs, keyArgs...), execUpdate(ctx))
}

// Remove deletes the row matching record's primary keys
func (m *Mapper[T]) Remove(ctx context.Context, record *T) error {
	if record == nil {
		return m.mappingError(errNilRecord)
	}

	sql, args, err := m.primaryKeyFilter(reflect.ValueOf(record))
	if err != nil {
		return err
	}
	return m.prepared(ctx, "delete", "DELETE FROM "+m.quote(m.table.Name)+sql, args, execUpdate(ctx))
}

// Truncate removes every row
func (m *Mapper[T]) Truncate(ctx context.Context) error {
	dialect := m.pool.Dialect()
	return m.execute(ctx, "truncate", dialect.TruncateSQL(m.quote(m.table.Name)))
}

func (m *Mapper[T]) primaryKeyFilter(rv reflect.Value) (string, []query.Value, error) {
	if len(m.table.PrimaryFields) == 0 {
		return "", nil, m.mappingError(ErrMissingPrimaryKey)
	}

	keys := make([]string, 0, len(m.table.PrimaryFields))
	args := make([]query.Value, 0, len(m.table.PrimaryFields))
	for _, field := range m.table.PrimaryFields {
		value, err := query.ValueOf(field.ValueOf(rv))
		if err != nil {
			return "", nil, m.mappingError(err)
		}
		keys = append(keys, m.quote(field.DBName)+" = ?")
		args = append(args, value)
	}
	return " WHERE " + strings.Join(keys, " AND "), args, nil
}

// FindAll returns every row
func (m *Mapper[T]) FindAll(ctx context.Context) ([]T, error) {
	return m.query(ctx, m.selectSQL(), nil)
}

// Find returns the rows matching a raw WHERE clause with ? placeholders
func (m *Mapper[T]) Find(ctx context.Context, where string, args ...interface{}) ([]T, error) {
	values, err := m.values(args)
	if err != nil {
		return nil, err
	}
	return m.query(ctx, m.selectSQL()+whereSQL(where), values)
}

// FindOne returns the first row matching a raw WHERE clause
func (m *Mapper[T]) FindOne(ctx context.Context, where string, args ...interface{}) (T, bool, error) {
	values, err := m.values(args)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return first(m.query(ctx, m.selectSQL()+whereSQL(where)+" LIMIT 1", values))
}

// Select returns the rows matching q, nil selects every row
func (m *Mapper[T]) Select(ctx context.Context, q *query.Query) ([]T, error) {
	sql, args, err := m.selectQuery(q, false)
	if err != nil {
		return nil, err
	}
	return m.query(ctx, sql, args)
}

// SelectOne returns the first row matching q, limiting the result to one
// row unless q sets its own limit
func (m *Mapper[T]) SelectOne(ctx context.Context, q *query.Query) (T, bool, error) {
	sql, args, err := m.selectQuery(q, true)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return first(m.query(ctx, sql, args))
}

// Count returns the number of rows matching q, nil counts every row
func (m *Mapper[T]) Count(ctx context.Context, q *query.Query) (int64, error) {
	sql := "SELECT COUNT(*) FROM " + m.quote(m.table.Name)
	var args []query.Value
	if q != nil {
		if err := q.Err(); err != nil {
			return 0, m.mappingError(err)
		}
		sql += whereSQL(q.WhereClause())
		args = q.Params()
	}

	var count int64
	err := m.prepared(ctx, "count", sql, args, func(stmt driver.PreparedStatement) (int64, error) {
		rs, err := stmt.ExecuteQuery(ctx)
		if err != nil {
			return -1, err
		}
		defer rs.Close()

		if rs.Next() {
			if columns := rs.Columns(); len(columns) > 0 {
				if count, err = rs.GetInt64(columns[0]); err != nil {
					return 0, err
				}
			}
			return 1, rs.Err()
		}
		return 0, rs.Err()
	})
	return count, err
}

func (m *Mapper[T]) selectSQL() string {
	return "SELECT * FROM " + m.quote(m.table.Name)
}

func (m *Mapper[T]) selectQuery(q *query.Query, one bool) (string, []query.Value, error) {
	if q == nil {
		q = query.New()
	}
	if err := q.Err(); err != nil {
		return "", nil, m.mappingError(err)
	}

	limit := q.LimitClause()
	if one && limit == "" {
		limit = " LIMIT 1"
	}
	sql := m.selectSQL() + whereSQL(q.WhereClause()) + q.OrderByClause() + limit + q.OffsetClause()
	return sql, q.Params(), nil
}

func (m *Mapper[T]) values(args []interface{}) ([]query.Value, error) {
	values := make([]query.Value, len(args))
	for i, arg := range args {
		value, err := query.ValueOf(arg)
		if err != nil {
			return nil, m.mappingError(err)
		}
		values[i] = value
	}
	return values, nil
}

func (m *Mapper[T]) query(ctx context.Context, sql string, args []query.Value) ([]T, error) {
	records := []T{}
	err := m.prepared(ctx, "query", sql, args, func(stmt driver.PreparedStatement) (int64, error) {
		rs, err := stmt.ExecuteQuery(ctx)
		if err != nil {
			return -1, err
		}
		defer rs.Close()

		fields := m.columnFields(rs.Columns())
		for rs.Next() {
			record, err := m.scan(rs, fields)
			if err != nil {
				return int64(len(records)), err
			}
			records = append(records, record)
		}
		return int64(len(records)), rs.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// columnFields pairs result columns with mapped fields, unmapped columns
// are ignored
func (m *Mapper[T]) columnFields(columns []string) map[string]*schema.Field {
	fields := make(map[string]*schema.Field, len(columns))
	for _, column := range columns {
		if field := m.table.LookUpField(column); field != nil {
			fields[column] = field
			continue
		}
		for _, field := range m.table.Fields {
			if strings.EqualFold(field.DBName, column) {
				fields[column] = field
				break
			}
		}
	}
	return fields
}

func (m *Mapper[T]) scan(rs driver.ResultSet, fields map[string]*schema.Field) (T, error) {
	var record T
	rv := reflect.ValueOf(&record)
	for column, field := range fields {
		value, err := extract(rs, column, field)
		if err != nil {
			return record, err
		}
		if err := field.Set(rv, value); err != nil {
			return record, m.mappingError(err)
		}
	}
	return record, nil
}

// extract reads column as the field's semantic type
func extract(rs driver.ResultSet, column string, field *schema.Field) (interface{}, error) {
	switch field.DataType {
	case schema.Int:
		return rs.GetInt(column)
	case schema.Int64:
		return rs.GetInt64(column)
	case schema.Uint:
		return rs.GetUInt(column)
	case schema.Uint64:
		v, err := rs.GetInt64(column)
		return uint64(v), err
	case schema.String:
		return rs.GetString(column)
	case schema.Bool:
		return rs.GetBoolean(column)
	case schema.Float, schema.Double:
		return rs.GetDouble(column)
	case schema.Time:
		s, err := rs.GetString(column)
		if err != nil || s == "" {
			return time.Time{}, err
		}
		t, err := now.ParseInLocation(time.UTC, s)
		return t.Local(), err
	}
	return nil, ErrUnsupportedType
}

func execUpdate(ctx context.Context) func(stmt driver.PreparedStatement) (int64, error) {
	return func(stmt driver.PreparedStatement) (int64, error) {
		res, err := stmt.ExecuteUpdate(ctx)
		if err != nil {
			return -1, err
		}
		return res.RowsAffected()
	}
}

func first[T any](records []T, err error) (T, bool, error) {
	if err != nil || len(records) == 0 {
		var zero T
		return zero, false, err
	}
	return records[0], true, nil
}

func whereSQL(where string) string {
	if strings.TrimSpace(where) == "" {
		return ""
	}
	return " WHERE " + where
}

func writePlaceholders(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
