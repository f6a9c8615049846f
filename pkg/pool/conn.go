package pool

import (
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

// Conn is a pooled connection. It embeds the underlying gateway connection,
// so statement creation happens directly on it. Callers must hand the
// connection back with Pool.Release rather than closing it; the pool owns
// the physical session.
//
// lastUsed is guarded by the pool mutex: the pool only reads or writes it
// while the connection sits in the idle set.
type Conn struct {
	gateway.Connection

	id        string
	createdAt time.Time
	lastUsed  time.Time
}

func newConn(raw gateway.Connection) *Conn {
	now := time.Now()
	return &Conn{
		Connection: raw,
		id:         uuid.NewString(),
		createdAt:  now,
		lastUsed:   now,
	}
}

// ID identifies the connection in logs.
func (c *Conn) ID() string {
	return c.id
}

// Age is the time since the physical connection was opened.
func (c *Conn) Age() time.Duration {
	return time.Since(c.createdAt)
}
