package swatch

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no entry exists for a key.
var ErrNotFound = errors.New("swatches not found")

// StorageError wraps a failed cache read or write.
// Callers on the discovery path treat it as a miss (reads) or a no-op (writes).
type StorageError struct {
	Op  string // "get", "set", "remove" or "clear"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("swatch storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
