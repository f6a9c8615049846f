package stdsql

import (
	"context"
	"time"

	"database/sql"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

// Conn wraps a single-session sql.DB.
type Conn struct {
	db  *sql.DB
	log *zap.Logger
}

var _ gateway.Connection = (*Conn)(nil)

// NewStatement returns a statement bound to this session.
func (c *Conn) NewStatement() gateway.Statement {
	return &Statement{db: c.db, log: c.log}
}

// Valid reports whether the session still answers a ping within timeout.
func (c *Conn) Valid(ctx context.Context, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.db.PingContext(ctx); err != nil {
		c.log.Debug("ping failed", zap.String("error", logging.SanitizeError(err)))
		return false
	}
	return true
}

// Close releases the underlying session.
func (c *Conn) Close() error {
	return c.db.Close()
}
