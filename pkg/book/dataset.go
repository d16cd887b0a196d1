package book

import (
	"encoding/json"
	"fmt"
)

// Dataset is the persisted document: every book, in insertion order.
type Dataset struct {
	Books []Book `json:"books"`

	// index maps ID to position in Books; built on first lookup.
	index map[string]int
}

// NewDataset returns a dataset holding books.
func NewDataset(books ...Book) *Dataset {
	if books == nil {
		books = []Book{}
	}
	return &Dataset{Books: books}
}

// Len returns the number of books.
func (d *Dataset) Len() int {
	return len(d.Books)
}

func (d *Dataset) ensureIndex() {
	if d.index != nil {
		return
	}
	d.index = make(map[string]int, len(d.Books))
	for i := range d.Books {
		d.index[d.Books[i].ID] = i
	}
}

// IndexOf returns the position of the book with the given ID, or -1.
func (d *Dataset) IndexOf(id string) int {
	d.ensureIndex()
	if i, ok := d.index[id]; ok {
		return i
	}
	return -1
}

// Find returns a copy of the book with the given ID.
func (d *Dataset) Find(id string) (Book, bool) {
	i := d.IndexOf(id)
	if i < 0 {
		return Book{}, false
	}
	return d.Books[i], true
}

// Has reports whether a book with the given ID exists.
func (d *Dataset) Has(id string) bool {
	return d.IndexOf(id) >= 0
}

// Append adds b at the end of the collection.
func (d *Dataset) Append(b Book) {
	d.ensureIndex()
	d.Books = append(d.Books, b)
	d.index[b.ID] = len(d.Books) - 1
}

// Replace overwrites the book with b.ID. It reports whether one was found.
func (d *Dataset) Replace(b Book) bool {
	i := d.IndexOf(b.ID)
	if i < 0 {
		return false
	}
	d.Books[i] = b
	return true
}

// Remove deletes the book with the given ID, keeping the order of the rest.
func (d *Dataset) Remove(id string) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	d.Books = append(d.Books[:i], d.Books[i+1:]...)
	d.index = nil
	return true
}

// IDs returns the set of IDs in use.
func (d *Dataset) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Books))
	for i := range d.Books {
		ids[d.Books[i].ID] = struct{}{}
	}
	return ids
}

// Clone returns a copy that shares no backing storage with d.
func (d *Dataset) Clone() *Dataset {
	books := make([]Book, len(d.Books))
	copy(books, d.Books)
	for i := range books {
		if books[i].Extra == nil {
			continue
		}
		extra := make(map[string]json.RawMessage, len(books[i].Extra))
		for k, v := range books[i].Extra {
			extra[k] = v
		}
		books[i].Extra = extra
	}
	return &Dataset{Books: books}
}

// Validate checks that every book has a non-empty, unique ID.
func (d *Dataset) Validate() error {
	seen := make(map[string]int, len(d.Books))
	for i := range d.Books {
		id := d.Books[i].ID
		if id == "" {
			return fmt.Errorf("book at index %d has no id", i)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate id %q at index %d and %d", id, prev, i)
		}
		seen[id] = i
	}
	return nil
}
