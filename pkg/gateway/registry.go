package gateway

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registration contains the metadata and constructor for one gateway kind.
type Registration struct {
	// Kind identifies the gateway ("postgres", "sql").
	Kind string

	// Description is a short human-readable summary for CLI discovery.
	Description string

	// New builds a factory. driverID selects the underlying database/sql
	// driver for gateways that multiplex several; single-driver gateways
	// ignore it.
	New func(driverID string, log *zap.Logger) ConnectionFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register is called by each gateway's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Kind] = reg
}

// Build constructs a factory for the given gateway kind. It fails when the
// kind was never registered, which usually means the implementation package
// was not imported.
func Build(kind, driverID string, log *zap.Logger) (ConnectionFactory, error) {
	registryMu.RLock()
	reg, ok := registry[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown gateway kind %q (missing import of the gateway package?)", kind)
	}
	return reg.New(driverID, log), nil
}

// Kinds returns the registered gateway kinds in no particular order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsRegistered checks if a gateway kind is available.
func IsRegistered(kind string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[kind]
	return ok
}
