package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  type: "postgres"
  host: "db.example.com"
  port: 5432
  name: "app"
  user: "yamluser"
pool:
  max: 4
`)

	t.Setenv("SQLBRIDGE_DB_HOST", "replica.example.com")
	t.Setenv("SQLBRIDGE_DB_PASSWORD", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Host != "replica.example.com" {
		t.Errorf("expected env host to win, got %s", cfg.Database.Host)
	}
	if cfg.Database.Type != "postgres" {
		t.Errorf("expected type from yaml, got %s", cfg.Database.Type)
	}
	if cfg.Database.User != "yamluser" {
		t.Errorf("expected user from yaml, got %s", cfg.Database.User)
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("expected password from env, got %q", cfg.Database.Password)
	}
	if cfg.Pool.Max != 4 {
		t.Errorf("expected pool max from yaml, got %d", cfg.Pool.Max)
	}
	if cfg.Pool.AcquireTimeoutMs != 20000 {
		t.Errorf("expected default acquire timeout, got %d", cfg.Pool.AcquireTimeoutMs)
	}
}

func TestLoad_PasswordNeverComesFromYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  type: "mysql"
  password: "should-be-ignored"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Password != "" {
		t.Errorf("password must only come from the environment, got %q", cfg.Database.Password)
	}
}

func TestLoad_EnvOnlyWhenDefaultFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDir) })

	t.Setenv("SQLBRIDGE_DB_TYPE", "sqlserver")
	t.Setenv("SQLBRIDGE_DB_URL", "sqlserver://db:1433?database=app")
	t.Setenv("SQLBRIDGE_POOL_MAX", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Type != "sqlserver" {
		t.Errorf("expected type from env, got %s", cfg.Database.Type)
	}
	if cfg.Database.URL != "sqlserver://db:1433?database=app" {
		t.Errorf("unexpected url %s", cfg.Database.URL)
	}
	if cfg.Pool.Max != 2 {
		t.Errorf("expected pool max 2, got %d", cfg.Pool.Max)
	}
	if !cfg.Pool.TestOnBorrow {
		t.Error("expected test_on_borrow default true")
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestLoad_PropertiesStringMergesOverYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  type: "postgres"
  properties:
    sslmode: "require"
    search_path: "app"
`)

	t.Setenv("SQLBRIDGE_DB_PROPERTIES", "sslmode=disable,application_name=sqlbridge")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	props := cfg.Database.Properties
	if props["sslmode"] != "disable" {
		t.Errorf("env property must override yaml, got sslmode=%q", props["sslmode"])
	}
	if props["search_path"] != "app" {
		t.Errorf("yaml-only property must survive, got search_path=%q", props["search_path"])
	}
	if props["application_name"] != "sqlbridge" {
		t.Errorf("env-only property missing, got %v", props)
	}
}

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single pair", "sslmode=disable", map[string]string{"sslmode": "disable"}},
		{"spaces trimmed around pairs", "a=1, b=2", map[string]string{"a": "1", "b": "2"}},
		{"malformed entries skipped", "a=1,borked,=5,b=2", map[string]string{"a": "1", "b": "2"}},
		{"value keeps later equals", "dsn=a=b", map[string]string{"dsn": "a=b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseProperties(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseProperties(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseProperties(%q)[%s] = %q, want %q", tt.input, k, got[k], v)
				}
			}
		})
	}
}

func TestBridge_ConvertsUnitsAndDisableValues(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Type:               "mysql",
			Host:               "db.internal",
			Port:               3307,
			Name:               "app",
			User:               "svc",
			Password:           "secret",
			PrepareStatements:  []string{"SET time_zone = '+00:00'"},
			TestTimeoutSeconds: 5,
		},
		Pool: PoolConfig{
			Min:                1,
			Max:                6,
			AcquireTimeoutMs:   1500,
			EvictionIntervalMs: -1,
			SoftIdleTimeoutMs:  60000,
			IdleTimeoutMs:      -1,
			TestOnBorrow:       true,
		},
	}

	bc := cfg.Bridge()

	if bc.DBType != "mysql" || bc.Database != "app" || bc.Port != 3307 {
		t.Errorf("basic fields not carried: %+v", bc)
	}
	if bc.TestTimeout != 5*time.Second {
		t.Errorf("expected 5s test timeout, got %v", bc.TestTimeout)
	}
	if bc.Pool.AcquireTimeout != 1500*time.Millisecond {
		t.Errorf("expected 1.5s acquire timeout, got %v", bc.Pool.AcquireTimeout)
	}
	if bc.Pool.EvictionInterval >= 0 {
		t.Errorf("-1 ms must stay a disable value, got %v", bc.Pool.EvictionInterval)
	}
	if bc.Pool.SoftIdleTimeout != time.Minute {
		t.Errorf("expected 1m soft idle timeout, got %v", bc.Pool.SoftIdleTimeout)
	}
	if bc.Pool.IdleTimeout >= 0 {
		t.Errorf("-1 ms must stay a disable value, got %v", bc.Pool.IdleTimeout)
	}
	if len(bc.PrepareStatements) != 1 {
		t.Errorf("prepare statements not carried: %v", bc.PrepareStatements)
	}
}
