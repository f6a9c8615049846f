// Package catalog maps database type names ("postgres", "mysql") to driver
// descriptors: which driver serves the type, how its URL is shaped, and
// which connection defaults apply. Built-in types register at init time and
// deployments can add their own from a YAML file.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Descriptor describes one supported database type.
type Descriptor struct {
	// Type is the lookup key, lowercase ("postgres").
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// DisplayName is a human-readable name for discovery listings.
	DisplayName string `json:"display_name" yaml:"display_name" mapstructure:"display_name"`

	// Description is a short summary shown next to DisplayName.
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// DriverID names the native driver ("pgx", "sqlserver", "mysql").
	DriverID string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Gateway selects the gateway implementation; empty means the
	// database/sql gateway.
	Gateway string `json:"gateway" yaml:"gateway" mapstructure:"gateway"`

	// URLTemplate builds a connection URL from {host}, {port} and
	// {database} placeholders when no explicit URL is configured.
	URLTemplate string `json:"url_template" yaml:"url_template" mapstructure:"url_template"`

	// DefaultPort is used by URL when the caller passes no port.
	DefaultPort int `json:"default_port" yaml:"default_port" mapstructure:"default_port"`

	// DefaultProperties seed the driver properties; explicit configuration
	// overrides individual keys.
	DefaultProperties map[string]string `json:"properties" yaml:"properties" mapstructure:"properties"`

	// PrepareStatements run on every fresh connection before its first
	// query (session setup such as forcing a time zone).
	PrepareStatements []string `json:"prepare_statements" yaml:"prepare_statements" mapstructure:"prepare_statements"`
}

// URL renders URLTemplate for the given target. A non-positive port falls
// back to DefaultPort. Returns empty when the type has no template.
func (d Descriptor) URL(host string, port int, database string) string {
	if d.URLTemplate == "" {
		return ""
	}
	if port <= 0 {
		port = d.DefaultPort
	}
	return d.Expand(map[string]string{
		"host":     host,
		"port":     strconv.Itoa(port),
		"database": database,
	})
}

// Expand substitutes {name} placeholders in URLTemplate. Unknown
// placeholders are left in place so misconfigurations stay visible.
func (d Descriptor) Expand(vars map[string]string) string {
	url := d.URLTemplate
	for name, value := range vars {
		url = strings.ReplaceAll(url, "{"+name+"}", value)
	}
	return url
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Descriptor)
)

// Register adds or replaces a descriptor. Registering an existing type
// overrides it, which lets deployments reshape a built-in.
// Thread-safe for concurrent init() calls.
func Register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("catalog: descriptor has no type")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(d.Type)] = d
	return nil
}

// Lookup returns the descriptor for a database type. The second return is
// false for unknown types; callers treat that as "no defaults" rather than
// an error.
func Lookup(dbType string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(dbType)]
	return d, ok
}

// Types returns all registered type names, sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// All returns every registered descriptor, sorted by type.
func All() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()

	all := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Type < all[j].Type })
	return all
}
