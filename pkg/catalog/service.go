package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dinhlab/supreme-fiesta/internal/id"
	"github.com/dinhlab/supreme-fiesta/pkg/book"
	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/query"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
	"github.com/dinhlab/supreme-fiesta/pkg/validation"
)

// maxIDAttempts bounds regeneration when a new ID collides with an existing one.
const maxIDAttempts = 16

// Operation names a kind of mutation.
type Operation string

// Mutation operations.
const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
)

// ChangeEvent describes a mutation that has been persisted. Book is the
// record after the change, or the removed record for deletes.
type ChangeEvent struct {
	Operation Operation `json:"operation"`
	ID        string    `json:"id"`
	Book      book.Book `json:"book"`
	Books     int       `json:"books"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeListener is called after each successful save, while the writer
// lock is still held, so events arrive in commit order. A listener that
// blocks stalls every writer.
type ChangeListener func(ChangeEvent)

// Service manages the book catalog.
type Service struct {
	store store.Store
	newID func() string
	now   func() time.Time
	log   *slog.Logger

	// writeMu serializes read-modify-write cycles.
	writeMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []ChangeListener
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log == nil {
			log = logging.Nop()
		}
		s.log = log
	}
}

// WithIDGenerator overrides how new book IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the time source used for change events.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// New creates a Service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		newID: id.Book,
		now:   time.Now,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddChangeListener registers fn to receive change events.
func (s *Service) AddChangeListener(fn ChangeListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(op Operation, b book.Book, books int) {
	s.listenersMu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	ev := ChangeEvent{Operation: op, ID: b.ID, Book: b, Books: books, Timestamp: s.now()}
	for _, fn := range listeners {
		fn(ev)
	}
}

// List returns the page of books matching q, in stored order.
// A nil q lists the first page with no filters.
func (s *Service) List(ctx context.Context, q *query.Query) ([]book.Book, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(ds.Books, q), nil
}

// Count returns the number of stored books.
func (s *Service) Count(ctx context.Context) (int, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

// Get returns the book with the given ID.
func (s *Service) Get(ctx context.Context, bookID string) (*book.Book, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := ds.Find(bookID)
	if !ok {
		return nil, &book.NotFoundError{ID: bookID}
	}
	return &b, nil
}

// Create validates body, assigns a fresh ID and appends the new book.
// Keys outside the create rules are ignored.
func (s *Service) Create(ctx context.Context, body map[string]any) (*book.Book, error) {
	if err := validation.Validate(body, validation.CreateRules).Err(); err != nil {
		return nil, err
	}
	b := fromBody(body)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	b.ID = s.uniqueID(ds)
	ds.Append(b)
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, err
	}

	s.log.Debug("book created", "id", b.ID, "title", b.Title)
	s.notify(OperationCreated, b, ds.Len())
	return &b, nil
}

// Update merges the fields in raw into the book with the given ID.
// A disallowed key fails before the dataset is read.
func (s *Service) Update(ctx context.Context, bookID string, raw map[string]json.RawMessage) (*book.Book, error) {
	patch, err := book.ParsePatch(raw)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := ds.Find(bookID)
	if !ok {
		return nil, &book.NotFoundError{ID: bookID}
	}

	updated := patch.Apply(current)
	if patch.Empty() {
		return &updated, nil
	}
	ds.Replace(updated)
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, err
	}

	s.log.Debug("book updated", "id", bookID)
	s.notify(OperationUpdated, updated, ds.Len())
	return &updated, nil
}

// Delete removes the book with the given ID.
func (s *Service) Delete(ctx context.Context, bookID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ds, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	removed, ok := ds.Find(bookID)
	if !ok || !ds.Remove(bookID) {
		return &book.NotFoundError{ID: bookID}
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return err
	}

	s.log.Debug("book deleted", "id", bookID)
	s.notify(OperationDeleted, removed, ds.Len())
	return nil
}

// uniqueID draws IDs until one is unused in ds.
func (s *Service) uniqueID(ds *book.Dataset) string {
	var candidate string
	for i := 0; i < maxIDAttempts; i++ {
		candidate = s.newID()
		if !ds.Has(candidate) {
			return candidate
		}
	}
	// Fall back to a longer random ID; collisions at this width are not expected.
	for ds.Has(candidate) {
		candidate = id.Hex(id.BookIDBytes * 2)
	}
	return candidate
}

// fromBody builds a book from a validated create body.
func fromBody(body map[string]any) book.Book {
	str := func(f book.Field) string {
		v, _ := validation.Stringify(body[string(f)])
		return v
	}
	num := func(f book.Field) int {
		n, _ := validation.ToInt(body[string(f)])
		return n
	}
	return book.Book{
		Author:    str(book.FieldAuthor),
		Country:   str(book.FieldCountry),
		ImageLink: str(book.FieldImageLink),
		Language:  str(book.FieldLanguage),
		Pages:     num(book.FieldPages),
		Title:     str(book.FieldTitle),
		Year:      num(book.FieldYear),
	}
}
