package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTable is returned when a service name has no registered definition.
var ErrUnknownTable = errors.New("unknown table")

var (
	registry   = make(map[string]*TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition under a service name.
// Returns an error if the name is empty or already registered.
func Register(name string, def *TableDefinition) error {
	if name == "" {
		return errors.New("register table: empty service name")
	}
	if def == nil {
		return fmt.Errorf("register table %s: nil definition", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return fmt.Errorf("table already registered: %s", name)
	}
	registry[name] = def
	return nil
}

// Replace registers def under name, replacing any previous definition.
// Definitions are swapped wholesale; there is no merge.
func Replace(name string, def *TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = def
}

// Unregister removes the definition registered under name.
// Returns false if nothing was registered.
func Unregister(name string) bool {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[name]; !ok {
		return false
	}
	delete(registry, name)
	return true
}

// Get returns the definition registered under name.
func Get(name string) (*TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// Lookup is Get with an ErrUnknownTable error for missing names.
func Lookup(name string) (*TableDefinition, error) {
	def, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return def, nil
}

// Names returns all registered service names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]*TableDefinition)
}
