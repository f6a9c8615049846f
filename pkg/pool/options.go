package pool

import (
	"context"
	"time"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

const (
	DefaultMaxSize          = 8
	DefaultMinSize          = 0
	DefaultAcquireTimeout   = 20 * time.Second
	DefaultEvictionInterval = 10 * time.Second
	DefaultSoftIdleTimeout  = 30 * time.Second
	DefaultIdleTimeout      = 30 * time.Second
)

// Options tunes pool sizing and idle eviction.
//
// Durations left at zero fall back to the defaults above. Setting a duration
// negative disables that behavior: a negative AcquireTimeout waits as long as
// the caller's context allows, negative idle timeouts keep connections
// forever.
type Options struct {
	// Min is the eviction floor. The evictor never soft-evicts the pool
	// below Min open connections; it does not pre-warm them.
	Min int

	// Max bounds open connections (idle plus in-use). Acquire queues once
	// the bound is reached.
	Max int

	// AcquireTimeout caps how long Acquire waits for a free slot.
	AcquireTimeout time.Duration

	// EvictionInterval is how often the background evictor scans the idle
	// set.
	EvictionInterval time.Duration

	// SoftIdleTimeout evicts connections idle this long, but only while
	// more than Min connections remain open.
	SoftIdleTimeout time.Duration

	// IdleTimeout evicts connections idle this long regardless of Min.
	IdleTimeout time.Duration

	// TestOnBorrow validates idle connections before handing them out.
	// Invalid connections are destroyed and replaced transparently.
	TestOnBorrow bool
}

// DefaultOptions returns the options used when callers tune nothing.
func DefaultOptions() Options {
	return Options{
		Min:              DefaultMinSize,
		Max:              DefaultMaxSize,
		AcquireTimeout:   DefaultAcquireTimeout,
		EvictionInterval: DefaultEvictionInterval,
		SoftIdleTimeout:  DefaultSoftIdleTimeout,
		IdleTimeout:      DefaultIdleTimeout,
		TestOnBorrow:     true,
	}
}

func (o Options) normalized() Options {
	if o.Max <= 0 {
		o.Max = DefaultMaxSize
	}
	if o.Min < 0 {
		o.Min = DefaultMinSize
	}
	if o.AcquireTimeout == 0 {
		o.AcquireTimeout = DefaultAcquireTimeout
	}
	if o.EvictionInterval == 0 {
		o.EvictionInterval = DefaultEvictionInterval
	}
	if o.SoftIdleTimeout == 0 {
		o.SoftIdleTimeout = DefaultSoftIdleTimeout
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	return o
}

// Hooks connect the pool to a concrete database. The pool never opens or
// closes connections itself; it delegates to these.
type Hooks struct {
	// Create opens a new physical connection. Called without pool locks
	// held; errors propagate to the Acquire caller unchanged.
	Create func(ctx context.Context) (gateway.Connection, error)

	// Destroy tears down a connection. Implementations swallow close
	// errors; the pool ignores anything Destroy does beyond returning.
	Destroy func(conn gateway.Connection)

	// Validate reports whether an idle connection is still usable. Only
	// consulted when Options.TestOnBorrow is set. Implementations bound
	// their own probe timeout.
	Validate func(ctx context.Context, conn gateway.Connection) bool
}
