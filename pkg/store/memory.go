package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

// Memory is a Store that keeps the dataset in memory.
// Load and Save exchange deep copies, so callers never share state with it.
type Memory struct {
	mu       sync.RWMutex
	ds       *book.Dataset
	readOnly bool
}

// NewMemory returns a memory store seeded with books.
func NewMemory(books ...book.Book) *Memory {
	return &Memory{ds: book.NewDataset(books...)}
}

// NewMemoryReadOnly returns a memory store that rejects Save.
func NewMemoryReadOnly(books ...book.Book) *Memory {
	m := NewMemory(books...)
	m.readOnly = true
	return m
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context) (*book.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds.Clone(), nil
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, ds *book.Dataset) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if m.readOnly {
		return &StorageError{Op: "save", Err: ErrReadOnly}
	}
	if err := ds.Validate(); err != nil {
		return &StorageError{Op: "save", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds.Clone()
	return nil
}

var _ Store = (*Memory)(nil)
