// Package driver defines the capabilities uorm needs from a database
// backend. Parameter indices are 1-based.
package driver

import (
	"context"

	"github.com/uorm/uorm/schema"
)

// Connector opens backend sessions
type Connector interface {
	Connect(ctx context.Context) (Connection, error)
}

// ConnectorFunc adapts a function to Connector
type ConnectorFunc func(ctx context.Context) (Connection, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Connection, error) {
	return f(ctx)
}

// Connection is one backend session, owned by a single goroutine at a time
type Connection interface {
	// IsValid reports whether the session can still serve statements
	IsValid(ctx context.Context) bool
	SetSchema(ctx context.Context, name string) error
	CreateStatement() (Statement, error)
	PrepareStatement(ctx context.Context, query string) (PreparedStatement, error)
	Close() error
}

// Statement executes literal SQL text
type Statement interface {
	Execute(ctx context.Context, query string) error
	ExecuteQuery(ctx context.Context, query string) (ResultSet, error)
	Close() error
}

// PreparedStatement executes SQL text with ? placeholders bound by index.
// Setters never fail; an index gap is sent as NULL.
type PreparedStatement interface {
	ExecuteUpdate(ctx context.Context) (Result, error)
	ExecuteQuery(ctx context.Context) (ResultSet, error)

	SetInt(index int, value int32)
	SetInt64(index int, value int64)
	SetUInt(index int, value uint32)
	SetString(index int, value string)
	SetBoolean(index int, value bool)
	SetDouble(index int, value float64)

	Close() error
}

// Result summarizes an executed update
type Result interface {
	LastInsertID() (int64, error)
	RowsAffected() (int64, error)
}

// ResultSet is a forward-only cursor read by column name
type ResultSet interface {
	Next() bool
	Columns() []string

	GetInt(column string) (int32, error)
	GetInt64(column string) (int64, error)
	GetUInt(column string) (uint32, error)
	GetString(column string) (string, error)
	GetBoolean(column string) (bool, error)
	GetDouble(column string) (float64, error)

	// Err returns the error, if any, that ended iteration
	Err() error
	Close() error
}

// Dialect captures the SQL differences between backends. Implementations
// are stateless.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// AutoIncrementModifier is the column modifier replacing AUTO_INCREMENT,
	// empty when the backend expresses it through the column type
	AutoIncrementModifier() string
	SupportsReturningID() bool
	// LastInsertIDSQL is the clause appended to an INSERT to return column
	LastInsertIDSQL(column string) string
	// DefaultValuesSQL follows the table name of an INSERT that sets no columns
	DefaultValuesSQL() string
	// TableOptions filters raw table options to what the backend accepts
	TableOptions(raw string) string
	DataTypeOf(field *schema.Field) string
	TruncateSQL(quotedTable string) string
}
