package catalog

func init() {
	mustRegister(Descriptor{
		Type:        "postgres",
		DisplayName: "PostgreSQL",
		Description: "Connect to PostgreSQL 12+",
		DriverID:    "pgx",
		Gateway:     "postgres",
		URLTemplate: "postgres://{host}:{port}/{database}",
		DefaultPort: 5432,
	})
	mustRegister(Descriptor{
		Type:        "mysql",
		DisplayName: "MySQL",
		Description: "Connect to MySQL 8+ and MariaDB",
		DriverID:    "mysql",
		Gateway:     "sql",
		URLTemplate: "tcp({host}:{port})/{database}",
		DefaultPort: 3306,
		// Query results should not depend on the server's local zone.
		PrepareStatements: []string{"SET time_zone = '+00:00'"},
	})
	mustRegister(Descriptor{
		Type:        "sqlserver",
		DisplayName: "Microsoft SQL Server",
		Description: "Connect to SQL Server 2017+ and Azure SQL",
		DriverID:    "sqlserver",
		Gateway:     "sql",
		URLTemplate: "sqlserver://{host}:{port}?database={database}",
		DefaultPort: 1433,
	})
	mustRegister(Descriptor{
		Type:        "generic",
		DisplayName: "Generic SQL",
		Description: "Any database with a registered database/sql driver",
		Gateway:     "sql",
	})
}

func mustRegister(d Descriptor) {
	if err := Register(d); err != nil {
		panic(err)
	}
}
