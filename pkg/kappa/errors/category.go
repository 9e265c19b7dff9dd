// Package errors defines the error taxonomy shared by the filter, tagging and
// calibration packages.
//
// Errors fall into three categories:
//   - Configuration: selector wiring or settings are malformed. Fatal to setup;
//     the affected filter or engine must not be used.
//   - Calibration: a calibration source could not be read or decoded.
//   - DomainRange: kinematics or epochs outside calibration coverage. These
//     are resolved by clamping and never returned to callers; the category
//     exists so that logged fallbacks can be classified.
package errors

import (
	"errors"
	"fmt"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryConfiguration indicates broken wiring or settings at setup time.
	CategoryConfiguration Category = iota

	// CategoryCalibration indicates an unreadable or malformed calibration source.
	CategoryCalibration

	// CategoryDomainRange indicates an input outside calibration coverage.
	CategoryDomainRange

	// CategoryInternal indicates anything else. Evaluation paths never
	// produce errors, so an internal error is a programming defect.
	CategoryInternal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryCalibration:
		return "calibration"
	case CategoryDomainRange:
		return "domain_range"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Context describes what was being set up or loaded.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s)", e.Context, e.Err, e.Category)
	}
	return fmt.Sprintf("%s (category: %s)", e.Err, e.Category)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// DomainRange creates a domain-range error for logging a fallback.
func DomainRange(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryDomainRange, context)
}

// Categorize determines the category of an error.
func Categorize(err error) Category {
	if err == nil {
		return CategoryInternal
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return CategoryConfiguration
	}

	var calErr *CalibrationError
	if errors.As(err, &calErr) {
		return CategoryCalibration
	}

	return CategoryInternal
}

// IsConfiguration reports whether err is a setup-time configuration error.
func IsConfiguration(err error) bool {
	return err != nil && Categorize(err) == CategoryConfiguration
}
