package uorm

import (
	"context"
	"time"

	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/logger"
	"github.com/uorm/uorm/query"
)

// session runs statements on connections borrowed per call and traces them
type session struct {
	pool   *Pool
	logger logger.Interface
}

// execute runs literal SQL through Statement.Execute
func (s session) execute(ctx context.Context, op, sql string) error {
	ctx = s.tagged(ctx, op)
	begin := time.Now()
	err := s.pool.With(ctx, func(conn driver.Connection) error {
		stmt, err := conn.CreateStatement()
		if err != nil {
			return err
		}
		defer stmt.Close()
		return stmt.Execute(ctx, sql)
	})
	s.trace(ctx, begin, sql, nil, -1, err)
	return wrapError(op, sql, err)
}

// prepared binds args in placeholder order and hands the statement to fn,
// which reports the rows affected or returned
func (s session) prepared(ctx context.Context, op, sql string, args []query.Value, fn func(stmt driver.PreparedStatement) (int64, error)) error {
	ctx = s.tagged(ctx, op)
	var (
		begin = time.Now()
		rows  = int64(-1)
	)
	err := s.pool.With(ctx, func(conn driver.Connection) error {
		stmt, err := conn.PrepareStatement(ctx, sql)
		if err != nil {
			return err
		}
		defer stmt.Close()

		bind(stmt, args)
		rows, err = fn(stmt)
		return err
	})
	s.trace(ctx, begin, sql, args, rows, err)
	return wrapError(op, sql, err)
}

func (s session) tagged(ctx context.Context, op string) context.Context {
	return logger.WithTags(ctx, logger.Tags{Pool: s.pool.Name(), Op: op})
}

func (s session) trace(ctx context.Context, begin time.Time, sql string, args []query.Value, rows int64, err error) {
	s.logger.Trace(ctx, begin, func() (string, int64) {
		vars := make([]interface{}, len(args))
		for i, arg := range args {
			vars[i] = arg
		}
		if filter, ok := s.logger.(logger.ParamsFilter); ok {
			sql, vars = filter.ParamsFilter(ctx, sql, vars...)
		}
		return logger.ExplainSQL(sql, nil, `'`, vars...), rows
	}, err)
}

// bind sets each value by its kind. NULL slots are left unset and sent as
// NULL by the connection.
func bind(stmt driver.PreparedStatement, args []query.Value) {
	for i, arg := range args {
		idx := i + 1
		switch arg.Kind() {
		case query.KindInt:
			stmt.SetInt(idx, arg.AsInt())
		case query.KindInt64:
			stmt.SetInt64(idx, arg.AsInt64())
		case query.KindUint:
			stmt.SetUInt(idx, arg.AsUint())
		case query.KindUint64:
			stmt.SetInt64(idx, int64(arg.AsUint64()))
		case query.KindString:
			stmt.SetString(idx, arg.AsString())
		case query.KindBool:
			stmt.SetBoolean(idx, arg.AsBool())
		case query.KindDouble:
			stmt.SetDouble(idx, arg.AsDouble())
		}
	}
}
