package main

import (
	"os"

	"github.com/ekaya-inc/sqlbridge/pkg/cli"

	// Link the built-in gateways so the catalog's database types resolve.
	_ "github.com/ekaya-inc/sqlbridge/pkg/gateway/postgres"
	_ "github.com/ekaya-inc/sqlbridge/pkg/gateway/stdsql"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
