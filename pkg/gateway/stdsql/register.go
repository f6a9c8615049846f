package stdsql

import (
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"

	// Bundled database/sql drivers. Programs embedding this package can
	// link additional drivers and reach them through their driver ID.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
)

func init() {
	gateway.Register(gateway.Registration{
		Kind:        "sql",
		Description: "database/sql gateway for MySQL, SQL Server and any registered driver",
		New: func(driverID string, log *zap.Logger) gateway.ConnectionFactory {
			return New(driverID, log)
		},
	})
}
