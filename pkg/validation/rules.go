package validation

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

// Check tests a body value. present is false when the key is missing.
type Check func(value any, present bool) bool

// Rule binds a check to a field and the message reported when it fails.
type Rule struct {
	Field   book.Field
	Check   Check
	Message string
}

// CreateRules are the rules a new book must satisfy.
var CreateRules = []Rule{
	{Field: book.FieldAuthor, Check: NotEmpty, Message: "Author is required"},
	{Field: book.FieldCountry, Check: NotEmpty, Message: "Country is required"},
	{Field: book.FieldImageLink, Check: NotEmpty, Message: "Image link is required"},
	{Field: book.FieldLanguage, Check: NotEmpty, Message: "Language is required"},
	{Field: book.FieldPages, Check: PositiveInt, Message: "Pages must be a positive integer"},
	{Field: book.FieldTitle, Check: NotEmpty, Message: "Title is required"},
	{Field: book.FieldYear, Check: PositiveInt, Message: "Year must be a positive integer"},
}

// Validate runs every rule against body and collects all failures.
func Validate(body map[string]any, rules []Rule) *Result {
	result := &Result{}
	for _, rule := range rules {
		v, ok := body[string(rule.Field)]
		if rule.Check(v, ok) {
			continue
		}
		fe := &FieldError{
			Type:     TypeField,
			Msg:      rule.Message,
			Path:     string(rule.Field),
			Location: LocationBody,
		}
		if ok {
			fe.Value = v
		}
		result.AddError(fe)
	}
	return result
}

// NotEmpty passes for a present scalar whose string form is non-empty.
func NotEmpty(value any, present bool) bool {
	if !present {
		return false
	}
	s, ok := Stringify(value)
	return ok && s != ""
}

// PositiveInt passes for an integer >= 1, given as a number or a numeric string.
func PositiveInt(value any, present bool) bool {
	if !present {
		return false
	}
	n, ok := ToInt(value)
	return ok && n >= 1
}

// Stringify returns the string form of a JSON scalar.
// Objects, arrays and null have none.
func Stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// ToInt converts an integral JSON number or a decimal integer string.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return ToInt(f)
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
