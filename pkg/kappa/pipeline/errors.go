package pipeline

import (
	"errors"
	"fmt"
)

// ErrIncompleteRecord is returned when a record has no event or no product.
var ErrIncompleteRecord = errors.New("record needs an event and a product")

// CancellationError reports a run stopped by its context.
type CancellationError struct {
	RunID string
	// Processed is the number of records finished before the run stopped.
	Processed int
	Total     int
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("run %s cancelled after %d of %d records: %v", e.RunID, e.Processed, e.Total, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// PanicError captures a panic raised while processing a record,
// typically from a custom filter.
type PanicError struct {
	Worker int
	// Record is the index of the record in the batch.
	Record int
	Value  any
	Stack  string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %d panicked on record %d: %v", e.Worker, e.Record, e.Value)
}
