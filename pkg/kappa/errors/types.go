package errors

import "fmt"

// ConfigurationError reports malformed or missing wiring at construction time.
type ConfigurationError struct {
	// Component names what was being built, e.g. a filter id or "btag.Engine".
	Component string
	// Field names the offending selector or setting, if any.
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s (%s): %s", e.Component, e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(component, field, message string) *ConfigurationError {
	return &ConfigurationError{Component: component, Field: field, Message: message}
}

// CalibrationError wraps failures reading a calibration source.
type CalibrationError struct {
	// Source identifies the source, e.g. a file path or "sqlite".
	Source string
	// Op is the operation that failed ("read", "decode", "save", "load").
	Op  string
	Err error
	// Transient marks failures that may succeed when retried, such as a
	// locked database. Missing or malformed data is never transient.
	Transient bool
}

// Error implements the error interface.
func (e *CalibrationError) Error() string {
	return fmt.Sprintf("calibration %s %s: %v", e.Op, e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *CalibrationError) Unwrap() error {
	return e.Err
}
