package provider

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the factories for a family of providers together with the
// instances built from them. Factories describe how to construct a backend
// from loose configuration; instances are what request handling resolves by
// name. Both maps are guarded by one lock, so a Registry is safe to share.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory associates a factory with a provider name. Registering
// the same name again replaces the earlier factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a provider through the factory registered under name. The
// result is not cached; pair with Set to make it resolvable.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("no factory registered for provider %q", name)
	}
	return factory(cfg)
}

// Get resolves a previously Set instance by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set stores an instance under name, replacing any earlier one.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	r.instances[name] = instance
	r.mu.Unlock()
}

// List returns the names of all registered factories in sorted order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
