package uorm_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/uorm/uorm/driver"
)

var errRefused = errors.New("connection refused")

// fakeDB records statements and answers queries for every fake connection
type fakeDB struct {
	mu      sync.Mutex
	execs   []fakeExec
	schemas []string

	lastInsertID int64
	rowsAffected int64
	err          error
	rows         func(sql string) ([]string, [][]interface{})
}

// fakeExec is one recorded statement. Bound lists the parameter indices
// that were set, in call order.
type fakeExec struct {
	SQL   string
	Args  []interface{}
	Bound []int
}

func (db *fakeDB) record(sql string, args []interface{}, bound ...int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execs = append(db.execs, fakeExec{SQL: sql, Args: append([]interface{}(nil), args...), Bound: bound})
	return db.err
}

func (db *fakeDB) last() fakeExec {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.execs) == 0 {
		return fakeExec{}
	}
	return db.execs[len(db.execs)-1]
}

func (db *fakeDB) statements() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	sqls := make([]string, len(db.execs))
	for i, exec := range db.execs {
		sqls[i] = exec.SQL
	}
	return sqls
}

// fakeConnector hands out fakeConns, failing on demand
type fakeConnector struct {
	db        *fakeDB
	attempts  atomic.Int32
	failFirst int32
	fail      atomic.Bool

	mu    sync.Mutex
	conns []*fakeConn
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{db: &fakeDB{}}
}

func (c *fakeConnector) Connect(ctx context.Context) (driver.Connection, error) {
	n := c.attempts.Add(1)
	if c.fail.Load() || n <= c.failFirst {
		return nil, errRefused
	}

	conn := &fakeConn{id: int(n), db: c.db}
	conn.valid.Store(true)
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

func (c *fakeConnector) opened() []*fakeConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeConn(nil), c.conns...)
}

type fakeConn struct {
	id     int
	db     *fakeDB
	valid  atomic.Bool
	closed atomic.Bool
	owners atomic.Int32
}

func idOf(conn driver.Connection) int {
	return conn.(*fakeConn).id
}

func (c *fakeConn) IsValid(context.Context) bool {
	return c.valid.Load() && !c.closed.Load()
}

func (c *fakeConn) SetSchema(_ context.Context, name string) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.schemas = append(c.db.schemas, name)
	return nil
}

func (c *fakeConn) CreateStatement() (driver.Statement, error) {
	return &fakeStatement{conn: c}, nil
}

func (c *fakeConn) PrepareStatement(_ context.Context, sql string) (driver.PreparedStatement, error) {
	return &fakePrepared{conn: c, sql: sql, args: make([]interface{}, strings.Count(sql, "?"))}, nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

type fakeStatement struct {
	conn *fakeConn
}

func (s *fakeStatement) Execute(_ context.Context, sql string) error {
	return s.conn.db.record(sql, nil)
}

func (s *fakeStatement) ExecuteQuery(_ context.Context, sql string) (driver.ResultSet, error) {
	if err := s.conn.db.record(sql, nil); err != nil {
		return nil, err
	}
	return s.conn.db.resultSet(sql), nil
}

func (s *fakeStatement) Close() error { return nil }

type fakePrepared struct {
	conn  *fakeConn
	sql   string
	args  []interface{}
	bound []int
}

func (s *fakePrepared) set(index int, v interface{}) {
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = v
	s.bound = append(s.bound, index)
}

func (s *fakePrepared) SetInt(index int, v int32)      { s.set(index, v) }
func (s *fakePrepared) SetInt64(index int, v int64)    { s.set(index, v) }
func (s *fakePrepared) SetUInt(index int, v uint32)    { s.set(index, v) }
func (s *fakePrepared) SetString(index int, v string)  { s.set(index, v) }
func (s *fakePrepared) SetBoolean(index int, v bool)   { s.set(index, v) }
func (s *fakePrepared) SetDouble(index int, v float64) { s.set(index, v) }

func (s *fakePrepared) ExecuteUpdate(context.Context) (driver.Result, error) {
	db := s.conn.db
	if err := db.record(s.sql, s.args, s.bound...); err != nil {
		return nil, err
	}
	return fakeResult{lastInsertID: db.lastInsertID, rowsAffected: db.rowsAffected}, nil
}

func (s *fakePrepared) ExecuteQuery(context.Context) (driver.ResultSet, error) {
	if err := s.conn.db.record(s.sql, s.args, s.bound...); err != nil {
		return nil, err
	}
	return s.conn.db.resultSet(s.sql), nil
}

func (s *fakePrepared) Close() error { return nil }

type fakeResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r fakeResult) LastInsertID() (int64, error) { return r.lastInsertID, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

func (db *fakeDB) resultSet(sql string) *fakeRows {
	rows := &fakeRows{index: -1}
	if db.rows != nil {
		rows.columns, rows.rows = db.rows(sql)
	}
	return rows
}

type fakeRows struct {
	columns []string
	rows    [][]interface{}
	index   int
}

func (r *fakeRows) Next() bool {
	r.index++
	return r.index < len(r.rows)
}

func (r *fakeRows) Columns() []string { return r.columns }

func (r *fakeRows) value(column string) (interface{}, error) {
	for i, name := range r.columns {
		if name == column {
			return r.rows[r.index][i], nil
		}
	}
	return nil, fmt.Errorf("no column %s", column)
}

func (r *fakeRows) GetInt(column string) (int32, error) {
	v, err := r.GetInt64(column)
	return int32(v), err
}

func (r *fakeRows) GetInt64(column string) (int64, error) {
	v, err := r.value(column)
	if err != nil || v == nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("column %s: %T is not an integer", column, v)
}

func (r *fakeRows) GetUInt(column string) (uint32, error) {
	v, err := r.GetInt64(column)
	return uint32(v), err
}

func (r *fakeRows) GetString(column string) (string, error) {
	v, err := r.value(column)
	if err != nil || v == nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func (r *fakeRows) GetBoolean(column string) (bool, error) {
	v, err := r.value(column)
	if err != nil || v == nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("column %s: %T is not a bool", column, v)
	}
	return b, nil
}

func (r *fakeRows) GetDouble(column string) (float64, error) {
	v, err := r.value(column)
	if err != nil || v == nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("column %s: %T is not a float", column, v)
	}
	return f, nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }
