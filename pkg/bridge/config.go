package bridge

import (
	"fmt"
	"time"

	"github.com/ekaya-inc/sqlbridge/pkg/catalog"
	"github.com/ekaya-inc/sqlbridge/pkg/pool"
)

// DefaultTestTimeout bounds liveness probes (pool validation and
// TestConnection) when the config does not set one.
const DefaultTestTimeout = 10 * time.Second

// Config describes one database target. New resolves it against the
// catalog entry for DBType: empty fields are filled from the descriptor,
// explicit values always win. DriverID and URL must be non-empty after
// resolution or construction fails with ErrConfiguration.
type Config struct {
	// DBType names a catalog descriptor ("postgres", "mysql", "sqlserver",
	// "generic", or a site-defined type). May be empty when Gateway,
	// DriverID and URL are all given explicitly.
	DBType string

	// URL is the connection URL or DSN. When empty it is built from Host,
	// Port and Database via the catalog URL template.
	URL string

	// DriverID identifies the native driver within its gateway, e.g. the
	// database/sql driver name for the "sql" gateway.
	DriverID string

	// Gateway overrides the descriptor's gateway kind.
	Gateway string

	// Host, Port and Database feed the catalog URL template when URL is
	// empty. Port 0 means the descriptor's default port.
	Host     string
	Port     int
	Database string

	// User and Password are folded into the connection properties handed
	// to the gateway.
	User     string
	Password string

	// Properties are driver connection properties. Descriptor defaults
	// apply underneath; explicit keys win.
	Properties map[string]string

	// DriverPath is exposed to gateways that load external driver code.
	// The built-in gateways ignore it.
	DriverPath string

	// PrepareStatements run in order on the acquired connection before
	// each query. Nil means the descriptor's defaults; an empty non-nil
	// slice disables them.
	PrepareStatements []string

	// Pool tunes the connection pool. Zero fields take pool defaults.
	Pool pool.Options

	// TestTimeout bounds connection liveness probes.
	TestTimeout time.Duration
}

// merge fills empty fields of c from fallback. Used to layer an
// environment-derived config beneath the explicit one.
func (c Config) merge(fallback Config) Config {
	if c.DBType == "" {
		c.DBType = fallback.DBType
	}
	if c.URL == "" {
		c.URL = fallback.URL
	}
	if c.DriverID == "" {
		c.DriverID = fallback.DriverID
	}
	if c.Gateway == "" {
		c.Gateway = fallback.Gateway
	}
	if c.Host == "" {
		c.Host = fallback.Host
	}
	if c.Port == 0 {
		c.Port = fallback.Port
	}
	if c.Database == "" {
		c.Database = fallback.Database
	}
	if c.User == "" {
		c.User = fallback.User
	}
	if c.Password == "" {
		c.Password = fallback.Password
	}
	if c.Properties == nil {
		c.Properties = fallback.Properties
	}
	if c.DriverPath == "" {
		c.DriverPath = fallback.DriverPath
	}
	if c.PrepareStatements == nil {
		c.PrepareStatements = fallback.PrepareStatements
	}
	if c.Pool == (pool.Options{}) {
		c.Pool = fallback.Pool
	}
	if c.TestTimeout == 0 {
		c.TestTimeout = fallback.TestTimeout
	}
	return c
}

// resolve layers env (if any) beneath cfg, applies catalog defaults and
// validates the result.
func resolve(cfg Config, env *Config) (Config, error) {
	if env != nil {
		cfg = cfg.merge(*env)
	}

	if cfg.DBType != "" {
		desc, ok := catalog.Lookup(cfg.DBType)
		if !ok {
			return cfg, fmt.Errorf("%w: unknown database type %q", ErrConfiguration, cfg.DBType)
		}
		if cfg.DriverID == "" {
			cfg.DriverID = desc.DriverID
		}
		if cfg.Gateway == "" {
			cfg.Gateway = desc.Gateway
		}
		if cfg.URL == "" {
			cfg.URL = desc.URL(cfg.Host, cfg.Port, cfg.Database)
		}
		if cfg.PrepareStatements == nil {
			cfg.PrepareStatements = desc.PrepareStatements
		}
		cfg.Properties = mergeProperties(desc.DefaultProperties, cfg.Properties)
	}

	if cfg.TestTimeout <= 0 {
		cfg.TestTimeout = DefaultTestTimeout
	}

	if cfg.DriverID == "" {
		return cfg, fmt.Errorf("%w: missing driver identifier", ErrConfiguration)
	}
	if cfg.URL == "" {
		return cfg, fmt.Errorf("%w: missing connection url", ErrConfiguration)
	}
	return cfg, nil
}

// mergeProperties overlays explicit properties on top of defaults without
// mutating either map.
func mergeProperties(defaults, explicit map[string]string) map[string]string {
	if len(defaults) == 0 {
		return explicit
	}
	merged := make(map[string]string, len(defaults)+len(explicit))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range explicit {
		merged[k] = v
	}
	return merged
}
