// Package postgres provides the PostgreSQL dialect and connector.
package postgres

import (
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/driver/sqldriver"
	"github.com/uorm/uorm/schema"
)

// Dialect is the PostgreSQL dialect. Auto-increment is expressed through
// SERIAL column types, so the modifier is empty.
type Dialect struct{}

var _ driver.Dialect = Dialect{}

func (Dialect) Name() string {
	return "postgres"
}

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) AutoIncrementModifier() string {
	return ""
}

func (Dialect) SupportsReturningID() bool {
	return true
}

func (d Dialect) LastInsertIDSQL(column string) string {
	return " RETURNING " + d.QuoteIdentifier(column)
}

func (Dialect) DefaultValuesSQL() string {
	return "DEFAULT VALUES"
}

// TableOptions drops MySQL engine and charset options
func (Dialect) TableOptions(string) string {
	return ""
}

func (Dialect) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Int:
		if field.AutoIncrement {
			return "SERIAL"
		}
		return "INTEGER"
	case schema.Int64, schema.Uint, schema.Uint64:
		if field.AutoIncrement {
			return "BIGSERIAL"
		}
		return "BIGINT"
	case schema.Bool:
		return "BOOLEAN"
	case schema.Float:
		return "REAL"
	case schema.Double:
		return "DOUBLE PRECISION"
	case schema.Time:
		return "TIMESTAMP"
	}
	return schema.DefaultSQLType(field.DataType)
}

func (Dialect) TruncateSQL(quotedTable string) string {
	return "TRUNCATE TABLE " + quotedTable
}

// SchemaSQL sets the session search path
func SchemaSQL(name string) string {
	return "SET search_path TO " + Dialect{}.QuoteIdentifier(name)
}

// DSN formats a lib/pq key/value connection string
func DSN(cfg config.Config) string {
	pairs := [][2]string{
		{"host", cfg.Hostname},
		{"port", strconv.Itoa(cfg.Port)},
		{"dbname", cfg.DataName},
		{"user", cfg.Username},
		{"password", cfg.Password},
		{"sslmode", "disable"},
	}

	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(pair[0])
		b.WriteByte('=')
		b.WriteString(quoteValue(pair[1]))
	}
	return b.String()
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Open returns a connector for the database described by cfg. Prepared
// statements are rebound from ? to $n placeholders.
func Open(cfg config.Config, opts sqldriver.Options) (*sqldriver.Connector, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	opts.Rebind = sqldriver.RebindDollar
	opts.SchemaSQL = SchemaSQL
	return sqldriver.NewConnector(db, opts), nil
}
