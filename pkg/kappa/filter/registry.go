package filter

import (
	"errors"
	"fmt"

	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/registry"
)

// ErrUnknownFilter is returned by Lookup for an id nobody registered.
var ErrUnknownFilter = errors.New("unknown filter")

// Registry resolves filters by their stable id.
type Registry struct {
	filters *registry.Registry[string, Filter]
}

// NewRegistry returns a registry holding the four category bindings.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, f := range Bindings() {
		// ids of the built-in bindings are distinct constants
		_ = r.Register(f)
	}
	return r
}

// NewEmptyRegistry returns a registry with no filters.
func NewEmptyRegistry() *Registry {
	return &Registry{filters: registry.New[string, Filter]()}
}

// Register adds a filter under its id. It returns a *errors.ConfigurationError
// for a nil filter, an empty id or an id that is already taken.
func (r *Registry) Register(f Filter) error {
	if f == nil {
		return kerrors.NewConfigurationError("filter.Registry", "", "filter is nil")
	}
	id := f.ID()
	if id == "" {
		return kerrors.NewConfigurationError("filter.Registry", "ID", "filter id is empty")
	}
	if err := r.filters.RegisterUnique(id, f); err != nil {
		return kerrors.NewConfigurationError(id, "ID", "filter id already registered")
	}
	return nil
}

// Lookup returns the filter registered under id.
func (r *Registry) Lookup(id string) (Filter, error) {
	f, ok := r.filters.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, id)
	}
	return f, nil
}

// MustLookup is like Lookup but panics for unknown ids.
func (r *Registry) MustLookup(id string) Filter {
	f, err := r.Lookup(id)
	if err != nil {
		panic(err)
	}
	return f
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []string {
	return r.filters.SortedKeys()
}

// Len returns the number of registered filters.
func (r *Registry) Len() int {
	return r.filters.Len()
}
