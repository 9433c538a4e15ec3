package adapter

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Factory constructs an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

// registration pairs a factory with the dialect its adapters report,
// captured once so callers can ask for defaults without building an adapter.
type registration struct {
	factory Factory
	dialect *Dialect
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registration)
)

// Register adds an adapter factory to the registry under a case-insensitive name.
// Called by adapter implementations in their init() functions. Registering the
// same name again replaces the earlier factory.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("adapter: Register factory is nil for " + name)
	}

	reg := registration{factory: factory}
	if a := factory(nil); a != nil {
		reg.dialect = a.Dialect()
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = reg
}

func lookup(name string) (registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[strings.ToLower(name)]
	return reg, ok
}

// Get retrieves an adapter factory by name.
func Get(name string) (Factory, bool) {
	reg, ok := lookup(name)
	return reg.factory, ok
}

// NewAdapter creates a new adapter instance based on config type.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	reg, ok := lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return reg.factory(logger), nil
}

// ListAdapters returns all registered adapter names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// IsRegistered checks if an adapter type is registered.
func IsRegistered(name string) bool {
	_, ok := lookup(name)
	return ok
}

// DialectFor returns the dialect reported by a registered adapter type.
func DialectFor(name string) (*Dialect, bool) {
	reg, ok := lookup(name)
	if !ok || reg.dialect == nil {
		return nil, false
	}
	return reg.dialect, true
}

// DefaultSchema returns the schema an adapter type inspects when none is
// configured, or "main" when the type is unknown.
func DefaultSchema(name string) string {
	if d, ok := DialectFor(name); ok && d.DefaultSchema != "" {
		return d.DefaultSchema
	}
	return "main"
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check your target.type in schemadoc.yaml", e.Type, e.Available)
}
