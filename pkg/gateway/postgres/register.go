package postgres

import (
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

func init() {
	gateway.Register(gateway.Registration{
		Kind:        "postgres",
		Description: "Native PostgreSQL gateway using pgx with server-side query cancellation",
		// The driver ID is ignored: this gateway always speaks pgx.
		New: func(_ string, log *zap.Logger) gateway.ConnectionFactory {
			return New(log)
		},
	})
}
