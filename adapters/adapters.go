// Package adapters holds the engine adapters and the registry that maps
// connection types to them.
package adapters

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/qstep/qsee/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no driver registered for provided type alias")
)

// registry maps type aliases to adapters. Adapters add themselves in init.
type registry struct {
	mu       sync.RWMutex
	adapters map[string]core.Adapter
}

var registered = &registry{adapters: make(map[string]core.Adapter)}

// add stores adapter under every non-empty alias.
func (r *registry) add(adapter core.Adapter, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		r.adapters[alias] = adapter
		added++
	}
	if added == 0 {
		return errNoValidTypeAliases
	}
	return nil
}

func (r *registry) get(alias string) (core.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTypeAlias, alias)
	}
	return adapter, nil
}

func register(adapter core.Adapter, aliases ...string) error {
	return registered.add(adapter, aliases...)
}

// Mux is the public face of the adapter registry.
type Mux struct{}

func (*Mux) GetAdapter(typ string) (core.Adapter, error) {
	return registered.get(typ)
}

// AddAdapter registers (or replaces) the adapter for the given type aliases.
func (*Mux) AddAdapter(adapter core.Adapter, aliases ...string) error {
	return registered.add(adapter, aliases...)
}

// Types lists all registered type aliases.
func (*Mux) Types() []string {
	registered.mu.RLock()
	defer registered.mu.RUnlock()

	types := make([]string, 0, len(registered.adapters))
	for alias := range registered.adapters {
		types = append(types, alias)
	}
	sort.Strings(types)
	return types
}

// NewConnection opens a connection with the adapter registered for
// params.Type.
func NewConnection(params *core.ConnectionParams) (*core.Connection, error) {
	adapter, err := registered.get(params.Expand().Type)
	if err != nil {
		return nil, fmt.Errorf("Mux.GetAdapter: %w", err)
	}

	c, err := core.NewConnection(params, adapter)
	if err != nil {
		return nil, fmt.Errorf("core.NewConnection: %w", err)
	}

	return c, nil
}
