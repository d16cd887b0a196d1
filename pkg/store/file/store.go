// Package file provides a file-based implementation of store.Store.
// The dataset is kept as one indented JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
)

// ErrExists is returned by Init when the data file is already present.
var ErrExists = errors.New("data file already exists")

// Store implements store.Store on a single JSON file.
type Store struct {
	path     string
	readOnly bool
	mu       sync.RWMutex
	log      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithReadOnly makes Save and Init fail with store.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(s *Store) { s.readOnly = readOnly }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log == nil {
			log = logging.Nop()
		}
		s.log = log
	}
}

// New creates a Store for the document at path.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = store.DefaultPath
	}
	s := &Store{
		path: path,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads, schema-checks and decodes the data file.
func (s *Store) Load(ctx context.Context) (*book.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.fail("load", err)
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, s.fail("load", store.ErrMissing)
		}
		return nil, s.fail("load", err)
	}

	if err := checkSchema(data); err != nil {
		return nil, s.fail("load", fmt.Errorf("%w: %v", store.ErrMalformed, err))
	}

	var ds book.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, s.fail("load", fmt.Errorf("%w: %v", store.ErrMalformed, err))
	}
	if ds.Books == nil {
		ds.Books = []book.Book{}
	}
	if err := ds.Validate(); err != nil {
		return nil, s.fail("load", fmt.Errorf("%w: %v", store.ErrMalformed, err))
	}

	s.log.Debug("dataset loaded", "path", s.path, "books", ds.Len())
	return &ds, nil
}

// Save writes ds atomically: a temp file in the same directory is synced and
// renamed over the data file.
func (s *Store) Save(ctx context.Context, ds *book.Dataset) error {
	if err := ctx.Err(); err != nil {
		return s.fail("save", err)
	}
	if s.readOnly {
		return s.fail("save", store.ErrReadOnly)
	}
	if err := ds.Validate(); err != nil {
		return s.fail("save", fmt.Errorf("%w: %v", store.ErrMalformed, err))
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return s.fail("save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.path, data); err != nil {
		return s.fail("save", err)
	}

	s.log.Debug("dataset saved", "path", s.path, "books", ds.Len())
	return nil
}

// Init creates an empty dataset document. An existing file is only replaced
// when force is set.
func (s *Store) Init(ctx context.Context, force bool) error {
	if s.readOnly {
		return s.fail("init", store.ErrReadOnly)
	}
	if !force {
		if _, err := os.Stat(s.path); err == nil {
			return s.fail("init", ErrExists)
		}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return s.fail("init", err)
		}
	}
	return s.Save(ctx, book.NewDataset())
}

func (s *Store) fail(op string, err error) error {
	return &store.StorageError{Op: op, Path: s.path, Err: err}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

var _ store.Store = (*Store)(nil)
