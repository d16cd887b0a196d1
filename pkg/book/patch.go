package book

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UpdateNotAllowedMessage is returned when an update names a field outside MutableFields.
const UpdateNotAllowedMessage = "Update field not allowed"

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Author    *string
	Country   *string
	ImageLink *string
	Language  *string
	Pages     *int
	Title     *string
	Year      *int
}

// ParsePatch builds a Patch from a decoded JSON object.
//
// Any key outside MutableFields rejects the whole request before a value is
// looked at. Numeric fields take a JSON integer or a numeric string and are not
// range checked.
func ParsePatch(raw map[string]json.RawMessage) (*Patch, error) {
	for key := range raw {
		if !Field(key).Mutable() {
			return nil, NotAllowed(UpdateNotAllowedMessage)
		}
	}

	p := &Patch{}
	for _, f := range MutableFields {
		v, ok := raw[string(f)]
		if !ok {
			continue
		}
		if f.Numeric() {
			n, err := decodeInt(v)
			if err != nil {
				return nil, Invalid(string(f) + " must be an integer")
			}
			p.setInt(f, n)
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil || isNull(v) {
			return nil, Invalid(string(f) + " must be a string")
		}
		p.setString(f, s)
	}
	return p, nil
}

func (p *Patch) setString(f Field, s string) {
	switch f {
	case FieldAuthor:
		p.Author = &s
	case FieldCountry:
		p.Country = &s
	case FieldImageLink:
		p.ImageLink = &s
	case FieldLanguage:
		p.Language = &s
	case FieldTitle:
		p.Title = &s
	}
}

func (p *Patch) setInt(f Field, n int) {
	switch f {
	case FieldPages:
		p.Pages = &n
	case FieldYear:
		p.Year = &n
	}
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.Author == nil && p.Country == nil && p.ImageLink == nil &&
		p.Language == nil && p.Pages == nil && p.Title == nil && p.Year == nil
}

// Apply returns b with the supplied fields overwritten.
func (p *Patch) Apply(b Book) Book {
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Country != nil {
		b.Country = *p.Country
	}
	if p.ImageLink != nil {
		b.ImageLink = *p.ImageLink
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	return b
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// decodeInt accepts 42 or "42".
func decodeInt(v json.RawMessage) (int, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var anyVal any
	if err := dec.Decode(&anyVal); err != nil {
		return 0, err
	}
	switch t := anyVal.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(n.String())
}
