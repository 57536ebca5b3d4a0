// Package sqldriver implements the uorm capability interfaces on top of
// database/sql. Each Connection pins one *sql.Conn session.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/uorm/uorm/driver"
)

var (
	// ErrBindIndex is returned when a parameter index is below 1
	ErrBindIndex = errors.New("parameter index out of range")
	// ErrColumnNotFound is returned when a result set has no such column
	ErrColumnNotFound = errors.New("column not found")
)

const defaultPingTimeout = 5 * time.Second

// Options tune the behaviour shared by every connection of a Connector
type Options struct {
	// Rebind rewrites ? placeholders of prepared statements, e.g. to $n
	Rebind func(query string) string
	// SchemaSQL returns the statement switching the session to a schema
	SchemaSQL func(name string) string
	// StmtCacheSize caps the prepared statements kept per connection, 0 disables the cache
	StmtCacheSize int
	// PingTimeout bounds IsValid
	PingTimeout time.Duration
}

// Connector hands out sessions of a *sql.DB
type Connector struct {
	DB   *sql.DB
	opts Options
}

// NewConnector wraps db. The db idle pool is disabled so that closing a
// session closes the physical connection.
func NewConnector(db *sql.DB, opts Options) *Connector {
	db.SetMaxIdleConns(0)
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = defaultPingTimeout
	}
	return &Connector{DB: db, opts: opts}
}

// Connect opens and pings a new session
func (c *Connector) Connect(ctx context.Context) (driver.Connection, error) {
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping session: %w", err)
	}

	return newConn(conn, c.opts)
}

// Close closes the underlying *sql.DB
func (c *Connector) Close() error {
	return c.DB.Close()
}

// Conn is a driver.Connection over one *sql.Conn
type Conn struct {
	conn  *sql.Conn
	opts  Options
	stmts *lru.Cache[string, *sql.Stmt]
}

func newConn(conn *sql.Conn, opts Options) (*Conn, error) {
	c := &Conn{conn: conn, opts: opts}
	if opts.StmtCacheSize > 0 {
		cache, err := lru.NewWithEvict[string, *sql.Stmt](opts.StmtCacheSize, func(_ string, stmt *sql.Stmt) {
			stmt.Close()
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("statement cache: %w", err)
		}
		c.stmts = cache
	}
	return c, nil
}

func (c *Conn) IsValid(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
	defer cancel()
	return c.conn.PingContext(ctx) == nil
}

// SetSchema is a no-op for backends without SchemaSQL
func (c *Conn) SetSchema(ctx context.Context, name string) error {
	if c.opts.SchemaSQL == nil {
		return nil
	}
	_, err := c.conn.ExecContext(ctx, c.opts.SchemaSQL(name))
	return err
}

func (c *Conn) CreateStatement() (driver.Statement, error) {
	return &Statement{conn: c.conn}, nil
}

func (c *Conn) PrepareStatement(ctx context.Context, query string) (driver.PreparedStatement, error) {
	args := make([]interface{}, countPlaceholders(query))
	if c.opts.Rebind != nil {
		query = c.opts.Rebind(query)
	}

	if c.stmts != nil {
		if stmt, ok := c.stmts.Get(query); ok {
			return &PreparedStatement{stmt: stmt, cached: true, args: args}, nil
		}
	}

	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	if c.stmts != nil {
		c.stmts.Add(query, stmt)
		return &PreparedStatement{stmt: stmt, cached: true, args: args}, nil
	}
	return &PreparedStatement{stmt: stmt, args: args}, nil
}

// Close releases cached statements and the session
func (c *Conn) Close() error {
	if c.stmts != nil {
		c.stmts.Purge()
	}
	return c.conn.Close()
}

// Statement runs literal SQL on a session
type Statement struct {
	conn *sql.Conn
}

func (s *Statement) Execute(ctx context.Context, query string) error {
	_, err := s.conn.ExecContext(ctx, query)
	return err
}

func (s *Statement) ExecuteQuery(ctx context.Context, query string) (driver.ResultSet, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return newResultSet(rows)
}

func (s *Statement) Close() error {
	return nil
}

// PreparedStatement buffers bound values until execution. Unset
// placeholders are sent as NULL.
type PreparedStatement struct {
	stmt   *sql.Stmt
	cached bool
	args   []interface{}
	err    error
}

func (s *PreparedStatement) set(index int, value interface{}) {
	if index < 1 {
		if s.err == nil {
			s.err = fmt.Errorf("%w: %d", ErrBindIndex, index)
		}
		return
	}
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = value
}

func (s *PreparedStatement) SetInt(index int, value int32)      { s.set(index, int64(value)) }
func (s *PreparedStatement) SetInt64(index int, value int64)    { s.set(index, value) }
func (s *PreparedStatement) SetUInt(index int, value uint32)    { s.set(index, int64(value)) }
func (s *PreparedStatement) SetString(index int, value string)  { s.set(index, value) }
func (s *PreparedStatement) SetBoolean(index int, value bool)   { s.set(index, value) }
func (s *PreparedStatement) SetDouble(index int, value float64) { s.set(index, value) }

func (s *PreparedStatement) ExecuteUpdate(ctx context.Context) (driver.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	res, err := s.stmt.ExecContext(ctx, s.args...)
	if err != nil {
		return nil, err
	}
	return result{res}, nil
}

func (s *PreparedStatement) ExecuteQuery(ctx context.Context) (driver.ResultSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows, err := s.stmt.QueryContext(ctx, s.args...)
	if err != nil {
		return nil, err
	}
	return newResultSet(rows)
}

// Close keeps cached statements open, the cache owns them
func (s *PreparedStatement) Close() error {
	s.args = nil
	if s.cached {
		return nil
	}
	return s.stmt.Close()
}

type result struct {
	sql.Result
}

func (r result) LastInsertID() (int64, error) {
	return r.Result.LastInsertId()
}
