package uorm

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/uorm/uorm/config"
	"github.com/uorm/uorm/driver"
	"github.com/uorm/uorm/logger"
)

// DefaultStmtCacheSize is the per-connection prepared statement cache size used by Open
const DefaultStmtCacheSize = 64

var errInvalidConnection = errors.New("connection failed validation")

// PoolOption configures a Pool
type PoolOption func(*poolOptions)

type poolOptions struct {
	logger        logger.Interface
	name          string
	stmtCacheSize int
}

func newPoolOptions(opts []PoolOption) poolOptions {
	o := poolOptions{logger: logger.Default, name: "default", stmtCacheSize: DefaultStmtCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Discard
	}
	return o
}

// WithLogger sets the logger used by the pool and the mappers built on it
func WithLogger(l logger.Interface) PoolOption {
	return func(o *poolOptions) { o.logger = l }
}

// WithName names the pool in logs and metrics
func WithName(name string) PoolOption {
	return func(o *poolOptions) { o.name = name }
}

// WithStmtCacheSize sets the prepared statement cache size of connections
// created by Open, 0 disables caching
func WithStmtCacheSize(n int) PoolOption {
	return func(o *poolOptions) { o.stmtCacheSize = n }
}

// PoolStats is a point-in-time snapshot of pool state
type PoolStats struct {
	Idle           int
	InUse          int
	Open           int
	Created        int64
	CreateFailures int64
	Recreated      int64
	Waits          int64
	WaitTimeouts   int64
}

// Pool is a bounded set of reusable connections. Idle connections are
// handed out in FIFO order and each is owned by at most one borrower.
type Pool struct {
	cfg       config.Config
	connector driver.Connector
	dialect   driver.Dialect
	logger    logger.Interface
	name      string
	closer    io.Closer

	mu      sync.Mutex
	idle    []driver.Connection
	waiters []chan struct{}
	numOpen int
	closed  bool

	created        atomic.Int64
	createFailures atomic.Int64
	recreated      atomic.Int64
	waits          atomic.Int64
	waitTimeouts   atomic.Int64
}

// NewPool validates cfg and fills the pool with up to cfg.PoolSize
// connections. Creation failures are logged, a partially filled pool is
// still returned.
func NewPool(ctx context.Context, cfg config.Config, connector driver.Connector, dialect driver.Dialect, opts ...PoolOption) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configurationError(err)
	}
	return newPool(ctx, cfg, connector, dialect, newPoolOptions(opts))
}

func newPool(ctx context.Context, cfg config.Config, connector driver.Connector, dialect driver.Dialect, o poolOptions) (*Pool, error) {
	switch {
	case connector == nil:
		return nil, &ConfigurationError{Field: "connector", Err: errors.New("is nil")}
	case dialect == nil:
		return nil, &ConfigurationError{Field: "dialect", Err: errors.New("is nil")}
	}

	p := &Pool{
		cfg:       cfg,
		connector: connector,
		dialect:   dialect,
		logger:    o.logger,
		name:      o.name,
		idle:      make([]driver.Connection, 0, cfg.PoolSize),
	}

	for i := 0; i < cfg.PoolSize; i++ {
		conn, err := p.create(ctx)
		if err != nil {
			p.logger.Warn(ctx, "failed to create initial connection #%d for pool %s: %v", i, p.name, err)
			continue
		}
		p.idle = append(p.idle, conn)
		p.numOpen++
	}

	p.logger.Info(ctx, "pool %s ready with %d/%d connections to %s", p.name, len(p.idle), cfg.PoolSize, cfg)
	return p, nil
}

// create opens one connection and checks it, outside the lock
func (p *Pool) create(ctx context.Context) (driver.Connection, error) {
	conn, err := p.connector.Connect(ctx)
	if err == nil && !conn.IsValid(ctx) {
		conn.Close()
		err = errInvalidConnection
	}
	if err != nil {
		p.createFailures.Add(1)
		return nil, err
	}
	p.created.Add(1)
	return conn, nil
}

// Dialect returns the dialect of the pooled backend
func (p *Pool) Dialect() driver.Dialect {
	return p.dialect
}

// Config returns the configuration the pool was built from
func (p *Pool) Config() config.Config {
	return p.cfg
}

// Logger returns the pool logger
func (p *Pool) Logger() logger.Interface {
	return p.logger
}

// Name returns the pool name
func (p *Pool) Name() string {
	return p.name
}

// Stats returns a snapshot of the pool's connection counts
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	idle, open := len(p.idle), p.numOpen
	p.mu.Unlock()

	return PoolStats{
		Idle:           idle,
		InUse:          open - idle,
		Open:           open,
		Created:        p.created.Load(),
		CreateFailures: p.createFailures.Load(),
		Recreated:      p.recreated.Load(),
		Waits:          p.waits.Load(),
		WaitTimeouts:   p.waitTimeouts.Load(),
	}
}

// Borrow hands out a validated connection. It waits for a returned
// connection when the pool is empty and no new one can be created, until
// ctx is done or the configured acquire timeout expires.
func (p *Pool) Borrow(ctx context.Context) (*PooledConn, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	if !conn.IsValid(ctx) {
		p.logger.Warn(ctx, "pool %s: replacing invalid connection", p.name)
		conn.Close()

		conn, err = p.create(ctx)
		if err != nil {
			p.mu.Lock()
			p.numOpen--
			p.mu.Unlock()
			return nil, &ConnectionError{Op: "recreate", Err: err}
		}
		p.recreated.Add(1)
	}

	return &PooledConn{Connection: conn, pool: p}, nil
}

func (p *Pool) acquire(ctx context.Context) (driver.Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, &ConnectionError{Op: "borrow", Err: ErrPoolClosed}
	}
	if conn, ok := p.popLocked(); ok {
		p.mu.Unlock()
		return conn, nil
	}

	if p.cfg.MaxOpen <= 0 || p.numOpen < p.cfg.MaxOpen {
		p.numOpen++
		p.mu.Unlock()

		conn, err := p.create(ctx)
		if err == nil {
			return conn, nil
		}
		p.logger.Warn(ctx, "pool %s: failed to create connection on demand: %v", p.name, err)

		p.mu.Lock()
		p.numOpen--
		if p.closed {
			p.mu.Unlock()
			return nil, &ConnectionError{Op: "borrow", Err: ErrPoolClosed}
		}
		if conn, ok := p.popLocked(); ok {
			p.mu.Unlock()
			return conn, nil
		}
	}

	return p.waitLocked(ctx)
}

// waitLocked is called with p.mu held and returns with it released
func (p *Pool) waitLocked(ctx context.Context) (driver.Connection, error) {
	if timeout := p.cfg.AcquireTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p.waits.Add(1)
	ch := make(chan struct{}, 1)
	p.waiters = append(p.waiters, ch)
	for {
		p.mu.Unlock()

		select {
		case <-ch:
			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return nil, &ConnectionError{Op: "borrow", Err: ErrPoolClosed}
			}
			if conn, ok := p.popLocked(); ok {
				p.mu.Unlock()
				return conn, nil
			}
			// taken by a borrower that did not wait, keep our turn
			p.waiters = append([]chan struct{}{ch}, p.waiters...)
		case <-ctx.Done():
			p.mu.Lock()
			if !p.removeWaiterLocked(ch) {
				// signalled while giving up, hand the wake-up on
				p.signalLocked()
			}
			p.mu.Unlock()
			p.waitTimeouts.Add(1)
			return nil, &ConnectionError{Op: "borrow", Err: ctx.Err()}
		}
	}
}

func (p *Pool) popLocked() (driver.Connection, bool) {
	if len(p.idle) == 0 {
		return nil, false
	}
	conn := p.idle[0]
	p.idle[0] = nil
	p.idle = p.idle[1:]
	return conn, true
}

func (p *Pool) signalLocked() {
	if len(p.waiters) == 0 {
		return
	}
	ch := p.waiters[0]
	p.waiters[0] = nil
	p.waiters = p.waiters[1:]
	ch <- struct{}{}
}

func (p *Pool) removeWaiterLocked(ch chan struct{}) bool {
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Pool) put(conn driver.Connection) {
	p.mu.Lock()
	if p.closed {
		p.numOpen--
		p.mu.Unlock()
		conn.Close()
		return
	}
	p.idle = append(p.idle, conn)
	p.signalLocked()
	p.mu.Unlock()
}

// With borrows a connection for the duration of fn and returns it on every
// exit path, panics included
func (p *Pool) With(ctx context.Context, fn func(conn driver.Connection) error) error {
	conn, err := p.Borrow(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn.Connection)
}

// Close closes idle connections and wakes every waiter. Connections still
// borrowed are closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.numOpen -= len(idle)
	for _, ch := range p.waiters {
		ch <- struct{}{}
	}
	p.waiters = nil
	p.mu.Unlock()

	var errs []error
	for _, conn := range idle {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PooledConn is a borrowed connection. Release returns it to the pool; the
// connection must not be used afterwards.
type PooledConn struct {
	driver.Connection
	pool     *Pool
	released atomic.Bool
}

// Release returns the connection to its pool, later calls are no-ops
func (c *PooledConn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.pool.put(c.Connection)
	}
}

func configurationError(err error) error {
	var fieldErr *config.FieldError
	if errors.As(err, &fieldErr) {
		return &ConfigurationError{Field: fieldErr.Field, Err: err}
	}
	return &ConfigurationError{Err: err}
}
