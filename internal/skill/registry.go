package skill

import (
	"fmt"
	"sort"
	"sync"
)

// Config represents skill-specific configuration (opaque to the registry).
type Config map[string]any

// Bool reads a boolean option, returning fallback when unset or mistyped.
func (c Config) Bool(key string, fallback bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return fallback
}

// Factory constructs a skill with the provided configuration.
type Factory func(Config) (Skill, error)

// Registry maintains known skill factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs a skill factory. Returns an error if the ID already exists.
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("skill: id is required")
	}
	if factory == nil {
		return fmt.Errorf("skill: factory is required for %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("skill: %s already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a skill by ID.
func (r *Registry) Resolve(id string, cfg Config) (Skill, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("skill: unknown id %s", id)
	}
	s, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Info().Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// IDs returns a sorted list of registered skill identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
