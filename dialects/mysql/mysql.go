// Package mysql provides the MySQL dialect and connector.
package mysql

import (
	"database/sql"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/driver/sqldriver"
	"github.com/uorm/uorm/schema"
)

// Dialect is the MySQL dialect
type Dialect struct{}

var _ driver.Dialect = Dialect{}

func (Dialect) Name() string {
	return "mysql"
}

func (Dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Dialect) AutoIncrementModifier() string {
	return schema.AutoIncrement
}

// SupportsReturningID is false, generated ids come from LastInsertId
func (Dialect) SupportsReturningID() bool {
	return false
}

func (Dialect) LastInsertIDSQL(string) string {
	return ""
}

func (Dialect) DefaultValuesSQL() string {
	return "() VALUES ()"
}

func (Dialect) TableOptions(raw string) string {
	return raw
}

func (Dialect) DataTypeOf(field *schema.Field) string {
	return schema.DefaultSQLType(field.DataType)
}

func (Dialect) TruncateSQL(quotedTable string) string {
	return "TRUNCATE TABLE " + quotedTable
}

// SchemaSQL switches the session database
func SchemaSQL(name string) string {
	return "USE " + Dialect{}.QuoteIdentifier(name)
}

// DSN formats the server address without a database name, the pool
// selects it per session through SetSchema
func DSN(cfg config.Config) string {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Address()
	return c.FormatDSN()
}

// Open returns a connector for the server described by cfg
func Open(cfg config.Config, opts sqldriver.Options) (*sqldriver.Connector, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, err
	}
	opts.SchemaSQL = SchemaSQL
	return sqldriver.NewConnector(db, opts), nil
}
