// Package store persists the book dataset.
//
// A Store loads the whole dataset and saves it back as a unit. Implementations
// must make Save atomic: a concurrent or crashed writer never leaves a reader
// looking at a partial document.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

// Common errors
var (
	ErrMissing   = errors.New("data file does not exist")
	ErrMalformed = errors.New("data file is malformed")
	ErrReadOnly  = errors.New("store is read-only")
)

// Backend represents a storage backend type.
type Backend string

const (
	// BackendFile stores the dataset in a JSON document on disk
	BackendFile Backend = "file"
	// BackendMemory keeps the dataset in memory (no persistence)
	BackendMemory Backend = "memory"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b == BackendFile || b == BackendMemory
}

// Config holds store configuration.
type Config struct {
	// Backend specifies the storage backend to use
	Backend Backend `json:"backend" yaml:"backend"`

	// Path is the data file location for the file backend
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ReadOnly prevents any write operations
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// DefaultPath is the data file used when none is configured.
const DefaultPath = "db.json"

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Path:    DefaultPath,
	}
}

// Store is the persistence interface for the dataset.
type Store interface {
	// Load reads the current dataset. Every call observes the latest save.
	Load(ctx context.Context) (*book.Dataset, error)

	// Save replaces the persisted dataset with ds.
	Save(ctx context.Context, ds *book.Dataset) error
}

// StorageError reports a failed load or save. It always maps to HTTP 500.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for this error.
func (e *StorageError) StatusCode() int {
	return http.StatusInternalServerError
}
