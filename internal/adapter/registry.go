// internal/adapter/registry.go
package adapter

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownAdapter is returned when no adapter carries the requested name
var ErrUnknownAdapter = errors.New("unknown site adapter")

// Registry holds adapters by name
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]func() *Adapter
}

// NewRegistry returns a registry holding the built-in adapters
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]func() *Adapter)}
	r.Register(VanGogh)
	r.Register(NGAHighlights)
	r.Register(NGA)
	return r
}

// Register adds an adapter constructor. The constructor is called on every
// lookup so callers can mutate the returned adapter freely.
func (r *Registry) Register(build func() *Adapter) {
	name := build().Name
	r.mu.Lock()
	r.adapters[name] = build
	r.mu.Unlock()
}

// Get returns a fresh copy of the named adapter
func (r *Registry) Get(name string) (*Adapter, error) {
	r.mu.RLock()
	build, ok := r.adapters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownAdapter, name, strings.Join(r.Names(), ", "))
	}
	return build(), nil
}

// Names returns the registered adapter names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a fresh copy of every adapter, sorted by name
func (r *Registry) All() []*Adapter {
	names := r.Names()
	out := make([]*Adapter, 0, len(names))
	for _, name := range names {
		a, _ := r.Get(name)
		out = append(out, a)
	}
	return out
}

// Parse decodes and validates a YAML adapter definition
func Parse(data []byte) (*Adapter, error) {
	var a Adapter
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse adapter: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadFile reads an adapter definition from path
func LoadFile(path string) (*Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read adapter file: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// RegisterFile validates the adapter defined in path and registers it.
// Every lookup decodes a fresh copy. It returns the adapter name.
func (r *Registry) RegisterFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read adapter file: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	r.Register(func() *Adapter {
		fresh, _ := Parse(data)
		return fresh
	})
	return a.Name, nil
}
