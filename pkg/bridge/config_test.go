package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sqlbridge/pkg/pool"
)

func TestResolve_CatalogFillsDriverGatewayAndURL(t *testing.T) {
	cfg, err := resolve(Config{
		DBType:   "postgres",
		Host:     "db.example.com",
		Database: "app",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.DriverID)
	assert.Equal(t, "postgres", cfg.Gateway)
	assert.Equal(t, "postgres://db.example.com:5432/app", cfg.URL, "default port fills the template")
	assert.Equal(t, DefaultTestTimeout, cfg.TestTimeout)
}

func TestResolve_ExplicitValuesWinOverCatalog(t *testing.T) {
	cfg, err := resolve(Config{
		DBType:   "postgres",
		URL:      "postgres://custom:9999/other",
		DriverID: "my-driver",
		Gateway:  "sql",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "my-driver", cfg.DriverID)
	assert.Equal(t, "sql", cfg.Gateway)
	assert.Equal(t, "postgres://custom:9999/other", cfg.URL)
}

func TestResolve_CatalogPrepareStatementsApplyWhenNil(t *testing.T) {
	cfg, err := resolve(Config{DBType: "mysql", Host: "h", Database: "d"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET time_zone = '+00:00'"}, cfg.PrepareStatements)

	cfg, err = resolve(Config{DBType: "mysql", Host: "h", Database: "d", PrepareStatements: []string{}}, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.PrepareStatements, "an explicit empty slice disables catalog prepare statements")
}

func TestResolve_EnvLayersBeneathExplicit(t *testing.T) {
	env := Config{
		DBType: "postgres",
		URL:    "postgres://env-host:5432/envdb",
		User:   "envuser",
		Port:   6000,
	}
	cfg, err := resolve(Config{User: "explicit"}, &env)
	require.NoError(t, err)

	assert.Equal(t, "explicit", cfg.User, "explicit beats env")
	assert.Equal(t, "postgres://env-host:5432/envdb", cfg.URL, "env beats catalog")
	assert.Equal(t, "pgx", cfg.DriverID, "catalog fills what neither sets")
	assert.Equal(t, 6000, cfg.Port)
}

func TestResolve_MissingPiecesFail(t *testing.T) {
	_, err := resolve(Config{DBType: "generic", URL: "db://host"}, nil)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "driver identifier")

	_, err = resolve(Config{DBType: "generic", DriverID: "x.Driver"}, nil)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "url")

	_, err = resolve(Config{DBType: "nope", URL: "db://host", DriverID: "x"}, nil)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestMergeProperties_ExplicitOverridesDefaults(t *testing.T) {
	defaults := map[string]string{"sslmode": "prefer", "application_name": "bridge"}
	explicit := map[string]string{"sslmode": "disable"}

	merged := mergeProperties(defaults, explicit)

	assert.Equal(t, "disable", merged["sslmode"])
	assert.Equal(t, "bridge", merged["application_name"])
	assert.Equal(t, "prefer", defaults["sslmode"], "inputs must not be mutated")
}

func TestConfigMerge_FieldwiseFallback(t *testing.T) {
	fallback := Config{
		DBType:      "mysql",
		Host:        "fallback-host",
		Port:        3306,
		Password:    "fallback-pass",
		Pool:        pool.Options{Max: 4},
		TestTimeout: 3 * time.Second,
		DriverPath:  "/opt/drivers",
	}
	merged := Config{DBType: "postgres", Host: "primary-host"}.merge(fallback)

	assert.Equal(t, "postgres", merged.DBType)
	assert.Equal(t, "primary-host", merged.Host)
	assert.Equal(t, 3306, merged.Port)
	assert.Equal(t, "fallback-pass", merged.Password)
	assert.Equal(t, 4, merged.Pool.Max)
	assert.Equal(t, 3*time.Second, merged.TestTimeout)
	assert.Equal(t, "/opt/drivers", merged.DriverPath)
}
