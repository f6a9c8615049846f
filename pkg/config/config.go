// Package config loads sqlbridge configuration from a YAML file and the
// environment. Environment variables always override YAML values; secrets
// (the database password) must only come from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/sqlbridge/pkg/bridge"
	"github.com/ekaya-inc/sqlbridge/pkg/pool"
)

// DefaultPath is the config file consulted when no path is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for sqlbridge.
type Config struct {
	// Database describes the target database.
	Database DatabaseConfig `yaml:"database"`

	// Pool tunes the connection pool. Millisecond fields accept -1 to
	// disable the behavior (no acquire deadline, no eviction).
	Pool PoolConfig `yaml:"pool"`

	// CatalogFile points at a YAML file with site-defined database type
	// descriptors, registered on top of the built-ins.
	CatalogFile string `yaml:"catalog_file" env:"SQLBRIDGE_CATALOG_FILE" env-default:""`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"SQLBRIDGE_VERBOSE" env-default:"false"`
}

// DatabaseConfig identifies the database and how to reach it.
type DatabaseConfig struct {
	Type    string `yaml:"type" env:"SQLBRIDGE_DB_TYPE" env-default:""`
	URL     string `yaml:"url" env:"SQLBRIDGE_DB_URL" env-default:""`
	Driver  string `yaml:"driver" env:"SQLBRIDGE_DB_DRIVER" env-default:""`
	Gateway string `yaml:"gateway" env:"SQLBRIDGE_DB_GATEWAY" env-default:""`

	// Host, Port and Name feed the catalog URL template when URL is empty.
	Host string `yaml:"host" env:"SQLBRIDGE_DB_HOST" env-default:""`
	Port int    `yaml:"port" env:"SQLBRIDGE_DB_PORT" env-default:"0"`
	Name string `yaml:"name" env:"SQLBRIDGE_DB_NAME" env-default:""`

	User     string `yaml:"user" env:"SQLBRIDGE_DB_USER" env-default:""`
	Password string `yaml:"-" env:"SQLBRIDGE_DB_PASSWORD"` // Secret - not in YAML

	// Properties are driver connection properties. PropertiesStr is the
	// environment form, a comma-separated list of key=value pairs; parsed
	// entries override same-named YAML keys.
	Properties    map[string]string `yaml:"properties"`
	PropertiesStr string            `yaml:"-" env:"SQLBRIDGE_DB_PROPERTIES" env-default:""`

	// PrepareStatements run on the connection before each query. Absent
	// means the catalog defaults for the database type.
	PrepareStatements []string `yaml:"prepare_statements"`

	// DriverPath is handed to gateways that load external driver code.
	DriverPath string `yaml:"driver_path" env:"SQLBRIDGE_DRIVER_PATH" env-default:""`

	TestTimeoutSeconds int `yaml:"test_timeout_seconds" env:"SQLBRIDGE_TEST_TIMEOUT_SECONDS" env-default:"10"`
}

// PoolConfig mirrors pool.Options in config-friendly units.
type PoolConfig struct {
	Min                int  `yaml:"min" env:"SQLBRIDGE_POOL_MIN" env-default:"0"`
	Max                int  `yaml:"max" env:"SQLBRIDGE_POOL_MAX" env-default:"8"`
	AcquireTimeoutMs   int  `yaml:"acquire_timeout_ms" env:"SQLBRIDGE_POOL_ACQUIRE_TIMEOUT_MS" env-default:"20000"`
	EvictionIntervalMs int  `yaml:"eviction_interval_ms" env:"SQLBRIDGE_POOL_EVICTION_INTERVAL_MS" env-default:"10000"`
	SoftIdleTimeoutMs  int  `yaml:"soft_idle_timeout_ms" env:"SQLBRIDGE_POOL_SOFT_IDLE_TIMEOUT_MS" env-default:"30000"`
	IdleTimeoutMs      int  `yaml:"idle_timeout_ms" env:"SQLBRIDGE_POOL_IDLE_TIMEOUT_MS" env-default:"30000"`
	TestOnBorrow       bool `yaml:"test_on_borrow" env:"SQLBRIDGE_POOL_TEST_ON_BORROW" env-default:"true"`
}

// Load reads configuration from path (or DefaultPath) with environment
// overrides. A missing default file is fine: the environment alone is
// read. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
		cfg.parseComplexFields()
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg.parseComplexFields()
	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after
// loading.
func (c *Config) parseComplexFields() {
	props := parseProperties(c.Database.PropertiesStr)
	if len(props) == 0 {
		return
	}
	if c.Database.Properties == nil {
		c.Database.Properties = make(map[string]string, len(props))
	}
	for k, v := range props {
		c.Database.Properties[k] = v
	}
}

// parseProperties parses a comma-separated key=value list. Entries without
// an equals sign are ignored.
func parseProperties(s string) map[string]string {
	if s == "" {
		return nil
	}
	props := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			continue
		}
		props[key] = value
	}
	return props
}

// Bridge converts the loaded configuration into a bridge.Config. The host
// is rewritten for Docker so a containerized client can still reach a
// database on the machine it runs on.
func (c *Config) Bridge() bridge.Config {
	return bridge.Config{
		DBType:            c.Database.Type,
		URL:               c.Database.URL,
		DriverID:          c.Database.Driver,
		Gateway:           c.Database.Gateway,
		Host:              ResolveHostForDocker(c.Database.Host),
		Port:              c.Database.Port,
		Database:          c.Database.Name,
		User:              c.Database.User,
		Password:          c.Database.Password,
		Properties:        c.Database.Properties,
		PrepareStatements: c.Database.PrepareStatements,
		DriverPath:        c.Database.DriverPath,
		TestTimeout:       time.Duration(c.Database.TestTimeoutSeconds) * time.Second,
		Pool: pool.Options{
			Min:              c.Pool.Min,
			Max:              c.Pool.Max,
			AcquireTimeout:   msDuration(c.Pool.AcquireTimeoutMs),
			EvictionInterval: msDuration(c.Pool.EvictionIntervalMs),
			SoftIdleTimeout:  msDuration(c.Pool.SoftIdleTimeoutMs),
			IdleTimeout:      msDuration(c.Pool.IdleTimeoutMs),
			TestOnBorrow:     c.Pool.TestOnBorrow,
		},
	}
}

// msDuration converts milliseconds to a Duration, passing negative values
// through so the pool's disable semantics survive the unit change.
func msDuration(ms int) time.Duration {
	if ms < 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}
