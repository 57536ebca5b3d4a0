// Package sqlite provides the embedded SQLite dialect and connector,
// backed by the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/driver/sqldriver"
	"github.com/uorm/uorm/schema"
)

// Dialect is the SQLite dialect. An auto-increment key must be declared
// INTEGER PRIMARY KEY AUTOINCREMENT.
type Dialect struct{}

var _ driver.Dialect = Dialect{}

func (Dialect) Name() string {
	return "sqlite"
}

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) AutoIncrementModifier() string {
	return "AUTOINCREMENT"
}

func (Dialect) SupportsReturningID() bool {
	return false
}

func (Dialect) LastInsertIDSQL(string) string {
	return ""
}

func (Dialect) DefaultValuesSQL() string {
	return "DEFAULT VALUES"
}

func (Dialect) TableOptions(string) string {
	return ""
}

func (Dialect) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Int, schema.Int64, schema.Uint, schema.Uint64:
		return "INTEGER"
	case schema.Bool:
		return "BOOLEAN"
	case schema.Float, schema.Double:
		return "REAL"
	case schema.Time:
		return "DATETIME"
	}
	return schema.DefaultSQLType(field.DataType)
}

// TruncateSQL uses DELETE, SQLite has no TRUNCATE
func (Dialect) TruncateSQL(quotedTable string) string {
	return "DELETE FROM " + quotedTable
}

// DSN is the database file with a busy timeout so concurrent sessions
// wait on locks instead of failing
func DSN(cfg config.Config) string {
	return cfg.DataName + "?_pragma=busy_timeout(5000)"
}

// Open returns a connector for the database file named by cfg.DataName.
// ":memory:" databases are private to each session.
func Open(cfg config.Config, opts sqldriver.Options) (*sqldriver.Connector, error) {
	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, err
	}
	return sqldriver.NewConnector(db, opts), nil
}
