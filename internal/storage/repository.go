// Package storage isolates persistence from the cache-building logic.
// Cache documents are read and written whole; callers diff before writing.
package storage

import "errors"

// ErrNotFound is returned when a document has never been persisted.
var ErrNotFound = errors.New("storage: document not found")

// DocumentRepository loads and saves one whole cache document. The merge
// policy lives with the caller; implementations only move bytes.
type DocumentRepository[T any] interface {
	Load() (T, error)
	Save(doc T) error
}
