// Package locator resolves service identifiers (as written in the upload
// mapping configuration) into service instances.
package locator

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
)

// Container resolves a service identifier into an instance
type Container interface {
	Get(id string) (any, error)
}

// Registry is an in-memory Container
type Registry struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]any)}
}

// Set registers svc under id, replacing any previous service
func (r *Registry) Set(id string, svc any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[id] = svc
}

// Get implements Container
func (r *Registry) Get(id string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrServiceNotFound, id)
	}
	return svc, nil
}

// Has reports whether a service is registered under id
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[id]
	return ok
}

// IDs returns the registered identifiers, sorted
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.services))
	for id := range r.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
