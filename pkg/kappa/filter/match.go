package filter

import (
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/object"
)

// Filter decides whether an event survives.
type Filter interface {
	// ID returns the stable identifier the filter is registered under.
	ID() string

	// Evaluate returns true if the event passes.
	Evaluate(event *object.Event, product *object.Product, settings object.Settings) bool
}

// Selectors wires a MatchFilter to one object category.
type Selectors[T any] struct {
	// Matched returns the valid candidates that matched a trigger object.
	Matched func(*object.Product) map[*T]*object.LV

	// Valid returns the valid candidates.
	Valid func(*object.Product) []*T

	// Minimum returns the required number of matched candidates.
	Minimum func(object.Settings) int
}

// MatchFilter is the category-generic trigger matching filter.
type MatchFilter[T any] struct {
	id  string
	sel Selectors[T]
}

var _ Filter = (*MatchFilter[object.Electron])(nil)

// NewMatchFilter builds a filter from an id and its selectors.
// It returns a *errors.ConfigurationError if the id is empty or a selector is nil.
func NewMatchFilter[T any](id string, sel Selectors[T]) (*MatchFilter[T], error) {
	component := id
	if component == "" {
		component = "filter.MatchFilter"
	}

	switch {
	case id == "":
		return nil, kerrors.NewConfigurationError(component, "ID", "filter id is empty")
	case sel.Matched == nil:
		return nil, kerrors.NewConfigurationError(component, "Matched", "selector is nil")
	case sel.Valid == nil:
		return nil, kerrors.NewConfigurationError(component, "Valid", "selector is nil")
	case sel.Minimum == nil:
		return nil, kerrors.NewConfigurationError(component, "Minimum", "selector is nil")
	}

	return &MatchFilter[T]{id: id, sel: sel}, nil
}

// MustMatchFilter is like NewMatchFilter but panics on a configuration error.
// It is meant for package-level bindings whose wiring is fixed at compile time.
func MustMatchFilter[T any](id string, sel Selectors[T]) *MatchFilter[T] {
	f, err := NewMatchFilter(id, sel)
	if err != nil {
		panic(err)
	}
	return f
}

// ID returns the filter id.
func (f *MatchFilter[T]) ID() string {
	return f.id
}

// Evaluate reports whether all valid candidates are matched and the number
// of matches reaches the configured minimum. The event is not inspected.
func (f *MatchFilter[T]) Evaluate(_ *object.Event, product *object.Product, settings object.Settings) bool {
	return Sufficient(
		len(f.sel.Matched(product)),
		len(f.sel.Valid(product)),
		f.sel.Minimum(settings),
	)
}

// Sufficient is the matching rule shared by every category:
// matched must cover valid and reach minimum.
func Sufficient(matched, valid, minimum int) bool {
	return matched >= valid && matched >= minimum
}
