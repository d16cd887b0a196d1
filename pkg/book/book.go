// Package book defines the book record, its field allow-lists, the persisted
// dataset document and the typed errors raised while working with them.
package book

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Book is a single record in the collection.
type Book struct {
	Author    string `json:"author"`
	Country   string `json:"country"`
	ImageLink string `json:"imageLink"`
	Language  string `json:"language"`
	// Link is carried through from older data files; the API never sets it.
	Link  string `json:"link,omitempty"`
	Pages int    `json:"pages"`
	Title string `json:"title"`
	Year  int    `json:"year"`
	ID    string `json:"id"`
	// Extra holds keys from older data files that the API does not model.
	// They are written back unchanged and never modified in place.
	Extra map[string]json.RawMessage `json:"-"`
}

// bookFields has Book's layout without its JSON methods.
type bookFields Book

// modeled are the keys Book maps to fields.
var modeled = map[string]struct{}{
	"author": {}, "country": {}, "imageLink": {}, "language": {}, "link": {},
	"pages": {}, "title": {}, "year": {}, "id": {},
}

// MarshalJSON writes the modeled fields followed by Extra in key order.
func (b Book) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(bookFields(b))
	if err != nil || len(b.Extra) == 0 {
		return data, err
	}
	keys := make([]string, 0, len(b.Extra))
	for k := range b.Extra {
		if _, ok := modeled[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(b.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the modeled fields and keeps every other key in Extra.
func (b *Book) UnmarshalJSON(data []byte) error {
	var f bookFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, ok := modeled[k]; ok {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]json.RawMessage)
		}
		f.Extra[k] = v
	}
	*b = Book(f)
	return nil
}

// Field names a book attribute as it appears on the wire.
type Field string

// Book fields.
const (
	FieldAuthor    Field = "author"
	FieldCountry   Field = "country"
	FieldImageLink Field = "imageLink"
	FieldLanguage  Field = "language"
	FieldPages     Field = "pages"
	FieldTitle     Field = "title"
	FieldYear      Field = "year"
	FieldID        Field = "id"
)

// FilterFields are the fields a list request may filter on.
var FilterFields = []Field{FieldAuthor, FieldCountry, FieldLanguage, FieldTitle}

// MutableFields are the fields a client may supply on create and update.
var MutableFields = []Field{
	FieldAuthor, FieldCountry, FieldImageLink, FieldLanguage,
	FieldPages, FieldTitle, FieldYear,
}

var (
	filterable = fieldSet(FilterFields)
	mutable    = fieldSet(MutableFields)
)

func fieldSet(fields []Field) map[Field]struct{} {
	m := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}

// Filterable reports whether f is on the list filter allow-list.
func (f Field) Filterable() bool {
	_, ok := filterable[f]
	return ok
}

// Mutable reports whether f is on the update allow-list.
func (f Field) Mutable() bool {
	_, ok := mutable[f]
	return ok
}

// Numeric reports whether f holds an integer.
func (f Field) Numeric() bool {
	return f == FieldPages || f == FieldYear
}

// Value returns the string form of field f, used for equality filtering.
func (b *Book) Value(f Field) string {
	switch f {
	case FieldAuthor:
		return b.Author
	case FieldCountry:
		return b.Country
	case FieldImageLink:
		return b.ImageLink
	case FieldLanguage:
		return b.Language
	case FieldPages:
		return strconv.Itoa(b.Pages)
	case FieldTitle:
		return b.Title
	case FieldYear:
		return strconv.Itoa(b.Year)
	case FieldID:
		return b.ID
	}
	return ""
}
