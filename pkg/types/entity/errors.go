package entity

import "github.com/pkg/errors"

// Sentinel errors shared by every store backend. Callers distinguish
// "doesn't exist" from "couldn't read" by matching with errors.Is.
var (
	// ErrNotFound means no document exists for the requested id.
	ErrNotFound = errors.New("entity not found")

	// ErrStorage means the storage medium itself failed (unreadable file,
	// closed database, corrupt document).
	ErrStorage = errors.New("storage failure")
)

// NotFoundError wraps ErrNotFound with the offending id.
func NotFoundError(id string) error {
	return errors.Wrapf(ErrNotFound, "entity %q", id)
}

// StorageError classifies an underlying failure as a storage error while
// keeping the cause readable.
func StorageError(op string, err error) error {
	return errors.Wrapf(ErrStorage, "%s: %v", op, err)
}
