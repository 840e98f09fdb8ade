package param

import (
	"errors"
	"fmt"
)

// ErrSlotRange indicates a parameter index outside [0, Count).
var ErrSlotRange = errors.New("parameter slot out of range")

// StorageError wraps a failure of the underlying non-volatile device.
// The in-memory image stays self-consistent when it occurs, so retrying
// the same operation repairs the medium once the fault clears.
type StorageError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("parameter storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the device error.
func (e *StorageError) Unwrap() error {
	return e.Err
}
