// Package stdsql implements the gateway over database/sql, covering MySQL,
// SQL Server and any other driver registered with sql.Register.
//
// Each gateway connection owns a dedicated sql.DB clamped to a single
// underlying session (MaxOpenConns 1, MaxIdleConns 1, no lifetime limit).
// Pooling happens one layer up; letting database/sql pool as well would
// hide session state such as SET commands behind a rotating set of
// sockets.
package stdsql

import (
	"context"
	"database/sql"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

// Factory opens database/sql connections for a fixed driver name.
type Factory struct {
	driver string
	log    *zap.Logger
}

var _ gateway.ConnectionFactory = (*Factory)(nil)

// New creates a factory for the given database/sql driver name. The driver
// must have been linked into the binary and registered via sql.Register.
func New(driver string, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{driver: driver, log: log}
}

// Open dials the database and verifies the session with a ping.
func (f *Factory) Open(ctx context.Context, dsn string, properties map[string]string) (gateway.Connection, error) {
	db, err := sql.Open(f.driver, applyProperties(dsn, properties))
	if err != nil {
		return nil, &gateway.ConnError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		f.log.Debug("connect failed",
			zap.String("driver", f.driver),
			zap.String("dsn", logging.SanitizeConnectionString(dsn)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, &gateway.ConnError{Op: "open", Err: err}
	}

	return &Conn{db: db, log: f.log}, nil
}

// applyProperties appends driver properties as DSN query parameters. Both
// URL-style DSNs (sqlserver://host?database=x) and MySQL's
// user:pass@tcp(host)/db form use ?key=value for options, so appending
// works for either. Keys are sorted to keep the DSN deterministic.
func applyProperties(dsn string, properties map[string]string) string {
	if len(properties) == 0 {
		return dsn
	}
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, k := range keys {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(properties[k]))
		sep = "&"
	}
	return b.String()
}
