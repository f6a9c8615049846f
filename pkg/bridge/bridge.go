// Package bridge is the public entry point of the module. A Driver owns a
// bounded pool of gateway connections for one database target and runs
// parameterized queries against it, with per-query cancellation, a hard
// statement timeout and a uniform error surface.
//
// A Driver moves through three states: unconfigured (before New), ready,
// and released. New validates the configuration against the catalog and
// creates the pool without opening any physical connection. Release drains
// the pool; a released Driver must not be reused.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/catalog"
	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
	"github.com/ekaya-inc/sqlbridge/pkg/pool"
	"github.com/ekaya-inc/sqlbridge/pkg/sqlfmt"
)

// Formatter renders a parameterized query into final SQL.
type Formatter func(query string, params []any) (string, error)

// Driver is the facade over one database target.
type Driver struct {
	cfg      Config
	factory  gateway.ConnectionFactory
	pool     *pool.Pool
	log      *zap.Logger
	format   Formatter
	executor executor

	// Connection properties are assembled lazily, once per pool.
	propsOnce sync.Once
	props     map[string]string

	released atomic.Bool
}

type options struct {
	log     *zap.Logger
	env     *Config
	factory gateway.ConnectionFactory
	format  Formatter
}

// Option adjusts Driver construction.
type Option func(*options)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithEnv layers an environment-derived config beneath the explicit one.
// Explicit values win over env values, env values win over catalog
// defaults.
func WithEnv(env Config) Option {
	return func(o *options) { o.env = &env }
}

// WithFactory injects a pre-built gateway factory, bypassing the registry.
// Used by embedders with out-of-tree gateways, and by tests.
func WithFactory(f gateway.ConnectionFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithFormatter replaces the default literal formatter.
func WithFormatter(f Formatter) Option {
	return func(o *options) { o.format = f }
}

// New resolves and validates cfg, then creates the connection pool. No
// physical connections are opened until the first query needs one.
func New(cfg Config, opts ...Option) (*Driver, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.format == nil {
		o.format = sqlfmt.Format
	}

	resolved, err := resolve(cfg, o.env)
	if err != nil {
		return nil, err
	}

	factory := o.factory
	if factory == nil {
		if resolved.Gateway == "" {
			return nil, fmt.Errorf("%w: no gateway kind for database type %q", ErrConfiguration, resolved.DBType)
		}
		factory, err = gateway.Build(resolved.Gateway, resolved.DriverID, o.log)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}

	d := &Driver{
		cfg:      resolved,
		factory:  factory,
		log:      o.log,
		format:   o.format,
		executor: executor{prepare: resolved.PrepareStatements},
	}

	p, err := pool.New(pool.Hooks{
		Create:   d.createConn,
		Destroy:  d.destroyConn,
		Validate: d.validateConn,
	}, resolved.Pool, o.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	d.pool = p

	d.log.Info("driver ready",
		zap.String("db_type", resolved.DBType),
		zap.String("driver", resolved.DriverID),
		zap.String("gateway", resolved.Gateway),
		zap.String("url", logging.SanitizeConnectionString(resolved.URL)),
	)
	return d, nil
}

// Query formats params into query, runs it on a pooled connection and
// returns the rows. The connection is always released, success or failure.
// Cancellation comes from ctx; use Submit for an explicit cancel handle.
func (d *Driver) Query(ctx context.Context, query string, params []any) (*RowSet, error) {
	return d.run(ctx, query, params, nil)
}

// Submit starts the query in its own goroutine and returns a handle with
// Wait and Cancel. Cancel before the native statement exists fails with
// ErrStatementNotReady; after, it invokes the native cancel path exactly
// once.
func (d *Driver) Submit(ctx context.Context, query string, params []any) *QueryHandle {
	h := &QueryHandle{cell: &cancelCell{}, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.rowSet, h.err = d.run(ctx, query, params, h.cell)
	}()
	return h
}

// TestConnection runs `SELECT 1` bounded by the configured test timeout.
func (d *Driver) TestConnection(ctx context.Context) (*RowSet, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.TestTimeout)
	defer cancel()
	return d.Query(ctx, "SELECT 1", nil)
}

// Release drains the pool, waiting for in-flight queries to return their
// connections, then destroys all idle connections. Safe to call more than
// once. The Driver is unusable afterwards.
func (d *Driver) Release(ctx context.Context) error {
	if d.released.Swap(true) {
		return nil
	}
	d.log.Info("releasing driver", zap.String("db_type", d.cfg.DBType))
	return d.pool.Close(ctx)
}

// Stats reports a point-in-time snapshot of the pool.
func (d *Driver) Stats() pool.Stats {
	return d.pool.Stats()
}

func (d *Driver) run(ctx context.Context, query string, params []any, cell *cancelCell) (*RowSet, error) {
	if d.released.Load() {
		return nil, ErrReleased
	}

	query, err := sqlfmt.Normalize(query)
	if err != nil {
		return nil, err
	}

	// Injection hits are logged, never blocked; Format escapes every
	// string value regardless of what the scanner thinks of it.
	for _, hit := range sqlfmt.CheckParams(params) {
		d.log.Warn("parameter matches a SQL injection fingerprint",
			zap.Int("param", hit.Index+1),
			zap.String("fingerprint", hit.Fingerprint),
		)
	}

	sql, err := d.format(query, params)
	if err != nil {
		return nil, err
	}

	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer d.pool.Release(conn)

	start := time.Now()
	rs, err := d.executor.run(ctx, conn, sql, cell)
	if err != nil {
		d.log.Debug("query failed",
			zap.String("conn_id", conn.ID()),
			zap.String("query", logging.SanitizeQuery(sql)),
			zap.String("error", logging.SanitizeError(err)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, err
	}
	d.log.Debug("query ok",
		zap.String("conn_id", conn.ID()),
		zap.Int("rows", rs.RowCount),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rs, nil
}

// createConn is the pool's Create hook.
func (d *Driver) createConn(ctx context.Context) (gateway.Connection, error) {
	d.propsOnce.Do(func() {
		props := make(map[string]string, len(d.cfg.Properties)+2)
		for k, v := range d.cfg.Properties {
			props[k] = v
		}
		if d.cfg.User != "" {
			props["user"] = d.cfg.User
		}
		if d.cfg.Password != "" {
			props["password"] = d.cfg.Password
		}
		d.props = props
	})
	return d.factory.Open(ctx, d.cfg.URL, d.props)
}

// destroyConn is the pool's Destroy hook. Close failures are logged and
// swallowed; the connection is being discarded either way.
func (d *Driver) destroyConn(conn gateway.Connection) {
	if err := conn.Close(); err != nil {
		d.log.Debug("closing connection failed",
			zap.String("error", logging.SanitizeError(err)))
	}
}

// validateConn is the pool's Validate hook.
func (d *Driver) validateConn(ctx context.Context, conn gateway.Connection) bool {
	return conn.Valid(ctx, d.cfg.TestTimeout)
}

// SupportedDrivers lists the database types the catalog knows about.
func SupportedDrivers() []string {
	return catalog.Types()
}

// DriverDescription looks up the catalog descriptor for dbType.
func DriverDescription(dbType string) (catalog.Descriptor, bool) {
	return catalog.Lookup(dbType)
}
