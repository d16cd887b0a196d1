package store

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

func TestBackend_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, BackendFile.Valid())
	assert.True(t, BackendMemory.Valid())
	assert.False(t, Backend("sqlite").Valid())
	assert.False(t, Backend("").Valid())
}

func TestStorageError(t *testing.T) {
	t.Parallel()

	err := &StorageError{Op: "load", Path: "db.json", Err: ErrMissing}
	assert.Equal(t, "load db.json: data file does not exist", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.True(t, errors.Is(err, ErrMissing))

	noPath := &StorageError{Op: "save", Err: ErrReadOnly}
	assert.Equal(t, "save: store is read-only", noPath.Error())
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMemory(book.Book{ID: "aaaa0001", Title: "Ulysses"})

	ds, err := m.Load(context.Background())
	require.NoError(t, err)
	ds.Books[0].Title = "changed"
	ds.Append(book.Book{ID: "aaaa0002"})

	again, err := m.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, again.Len())
	assert.Equal(t, "Ulysses", again.Books[0].Title)
}

func TestMemory_SaveReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	ds := book.NewDataset(book.Book{ID: "aaaa0001"}, book.Book{ID: "aaaa0002"})
	require.NoError(t, m.Save(ctx, ds))

	ds.Books[0].Title = "after save"

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Empty(t, loaded.Books[0].Title)
}

func TestMemory_SaveRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	err := m.Save(context.Background(), book.NewDataset(book.Book{ID: "a"}, book.Book{ID: "a"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestMemory_ReadOnly(t *testing.T) {
	t.Parallel()

	m := NewMemoryReadOnly(book.Book{ID: "aaaa0001"})
	err := m.Save(context.Background(), book.NewDataset())

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.True(t, errors.Is(err, ErrReadOnly))

	ds, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestMemory_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	_, err := m.Load(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(m.Save(ctx, book.NewDataset()), context.Canceled))
}
