// Package postgres implements the gateway over pgx's native protocol.
// Cancellation here is the real thing: a PostgreSQL CancelRequest sent on a
// separate connection, the same signal psql's Ctrl-C sends, so a cancelled
// query stops consuming server resources instead of merely being abandoned
// client-side.
package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

// Factory opens native pgx connections.
type Factory struct {
	log *zap.Logger
}

var _ gateway.ConnectionFactory = (*Factory)(nil)

// New creates a factory. There is no driver ID to choose: this gateway
// always speaks pgx.
func New(log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{log: log}
}

// Open parses the URL, applies driver properties and dials the server.
func (f *Factory) Open(ctx context.Context, url string, properties map[string]string) (gateway.Connection, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, &gateway.ConnError{Op: "open", Err: fmt.Errorf("parse url: %w", err)}
	}
	applyProperties(cfg, properties)

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		f.log.Debug("postgres connect failed",
			zap.String("url", logging.SanitizeConnectionString(url)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, &gateway.ConnError{Op: "open", Err: err}
	}

	return &Conn{conn: conn, log: f.log}, nil
}

// applyProperties maps driver properties onto the parsed config. Identity
// keys override connection fields; everything else becomes a server runtime
// parameter (application_name, search_path, statement_timeout, ...).
func applyProperties(cfg *pgx.ConnConfig, properties map[string]string) {
	for key, value := range properties {
		switch key {
		case "user":
			cfg.User = value
		case "password":
			cfg.Password = value
		case "database":
			cfg.Database = value
		case "host":
			cfg.Host = value
		case "port":
			if p, err := strconv.ParseUint(value, 10, 16); err == nil {
				cfg.Port = uint16(p)
			}
		default:
			cfg.RuntimeParams[key] = value
		}
	}
}
