package uorm

import (
	"context"

	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/dialects/mysql"
	"github.com/uorm/uorm/dialects/postgres"
	"github.com/uorm/uorm/dialects/sqlite"
	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/driver/sqldriver"
	"github.com/uorm/uorm/logger"
)

// Open builds a pool for the backend selected by cfg.Driver. An empty driver
// selects MySQL; any name other than mysql, postgres and sqlite (and their
// aliases) is rejected with a *ConfigurationError rather than falling back.
func Open(ctx context.Context, cfg config.Config, opts ...PoolOption) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configurationError(err)
	}

	o := newPoolOptions(opts)
	drvOpts := sqldriver.Options{StmtCacheSize: o.stmtCacheSize}
	kind, _ := cfg.Kind()

	var (
		dialect   driver.Dialect
		sqlConn   *sqldriver.Connector
		connector driver.Connector
		err       error
	)

	switch kind {
	case config.PostgreSQL:
		dialect = postgres.Dialect{}
		sqlConn, err = postgres.Open(cfg, drvOpts)
		connector = sqlConn
	case config.SQLite:
		dialect = sqlite.Dialect{}
		sqlConn, err = sqlite.Open(cfg, drvOpts)
		connector = sqlConn
	default:
		dialect = mysql.Dialect{}
		sqlConn, err = mysql.Open(cfg, drvOpts)
		connector = &schemaConnector{Connector: sqlConn, schema: cfg.DataName, logger: o.logger}
	}
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	pool, err := newPool(ctx, cfg, connector, dialect, o)
	if err != nil {
		sqlConn.Close()
		return nil, err
	}
	pool.closer = sqlConn
	return pool, nil
}

// schemaConnector selects the configured database on every new session
type schemaConnector struct {
	driver.Connector
	schema string
	logger logger.Interface
}

func (c *schemaConnector) Connect(ctx context.Context) (driver.Connection, error) {
	conn, err := c.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.SetSchema(ctx, c.schema); err != nil {
		c.logger.Warn(ctx, "failed to select database %s: %v", c.schema, err)
	}
	return conn, nil
}
