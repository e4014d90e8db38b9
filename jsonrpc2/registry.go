package jsonrpc2

import (
	"fmt"
	"sort"
	"sync"
)

type methodKey struct {
	name    string
	version Version
}

// Registry maps (method name, version) pairs to methods. A method registered
// for one version never answers requests of the other.
type Registry struct {
	mu      sync.RWMutex
	methods map[methodKey]Method
}

// Add registers a method. Methods without a version are registered for
// Version2.
func (r *Registry) Add(m Method) error {
	if m.Name == "" {
		return fmt.Errorf("jsonrpc2: method name must not be empty")
	}
	if m.Func == nil {
		return fmt.Errorf("jsonrpc2: method %s has no handler", m.Name)
	}
	if m.Accepts == 0 {
		return fmt.Errorf("jsonrpc2: method %s accepts no params shape", m.Name)
	}
	m.Version = m.Version.orDefault()
	if m.Version == Version1 && m.Accepts&AcceptPositional == 0 {
		return fmt.Errorf("jsonrpc2: version 1.0 method %s must accept positional params", m.Name)
	}
	key := methodKey{m.Name, m.Version}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.methods == nil {
		r.methods = map[methodKey]Method{}
	}
	if _, ok := r.methods[key]; ok {
		return &DuplicateMethodError{Method: m.Name, Version: m.Version}
	}
	r.methods[key] = m
	return nil
}

// Resolve returns the method registered for name and version, or an *Error
// with ErrCodeMethodNotFound.
func (r *Registry) Resolve(name string, version Version) (Method, error) {
	r.mu.RLock()
	m, ok := r.methods[methodKey{name, version.orDefault()}]
	r.mu.RUnlock()
	if !ok {
		return Method{}, ErrMethodNotFound(name)
	}
	return m, nil
}

// Methods returns all registered methods ordered by name, then version.
func (r *Registry) Methods() []Method {
	r.mu.RLock()
	methods := make([]Method, 0, len(r.methods))
	for _, m := range r.methods {
		methods = append(methods, m)
	}
	r.mu.RUnlock()
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Name != methods[j].Name {
			return methods[i].Name < methods[j].Name
		}
		return methods[i].Version < methods[j].Version
	})
	return methods
}
