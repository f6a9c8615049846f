package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

const closeTimeout = 5 * time.Second

// Conn wraps a single pgx session.
type Conn struct {
	conn *pgx.Conn
	log  *zap.Logger
}

var _ gateway.Connection = (*Conn)(nil)

// NewStatement returns a statement bound to this session. pgx connections
// are not safe for concurrent use, so callers must finish (or cancel) one
// statement before starting the next.
func (c *Conn) NewStatement() gateway.Statement {
	return &Statement{conn: c.conn, log: c.log}
}

// Valid reports whether the session still answers a ping within timeout.
func (c *Conn) Valid(ctx context.Context, timeout time.Duration) bool {
	if c.conn.IsClosed() {
		return false
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.conn.Ping(ctx); err != nil {
		c.log.Debug("postgres ping failed", zap.String("error", logging.SanitizeError(err)))
		return false
	}
	return true
}

// Close terminates the session. A fresh timeout context is used so a dead
// peer cannot hang pool eviction.
func (c *Conn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return c.conn.Close(ctx)
}
