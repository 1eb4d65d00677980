package device

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a backend.
type Factory func() (Backend, error)

var (
	backendMu sync.RWMutex
	backends  = map[string]Factory{}
)

// Register makes a backend available under name. Passing a nil factory
// removes it.
func Register(name string, f Factory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if f == nil {
		delete(backends, name)
		return
	}
	backends[name] = f
}

// Open constructs the backend registered under name.
func Open(name string) (Backend, error) {
	backendMu.RLock()
	f := backends[name]
	backendMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("opening backend %q: %w", name, ErrNoBackend)
	}
	b, err := f()
	if err != nil {
		return nil, fmt.Errorf("opening backend %q: %w", name, err)
	}
	return b, nil
}

// Backends lists the registered backend names.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
