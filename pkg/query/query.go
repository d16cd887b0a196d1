// Package query implements list filtering and pagination over books.
//
// A list request may filter on the fields in book.FilterFields and page
// through the result with page/limit. Filters combine with logical AND and
// compare by exact string equality. Results keep collection order.
package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

// Pagination parameters and their defaults.
const (
	ParamPage    = "page"
	ParamLimit   = "limit"
	DefaultPage  = 1
	DefaultLimit = 10
)

// Query is a parsed list request.
type Query struct {
	Filters map[book.Field]string
	Page    int
	Limit   int
}

// New returns a query with default pagination and no filters.
func New() *Query {
	return &Query{
		Filters: make(map[book.Field]string),
		Page:    DefaultPage,
		Limit:   DefaultLimit,
	}
}

// Offset returns the number of matching records skipped before this page.
// It saturates at math.MaxInt instead of overflowing.
func (q *Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return q.Limit * (q.Page - 1)
}

// Where adds an equality filter. Empty values are ignored.
func (q *Query) Where(f book.Field, value string) *Query {
	if value != "" {
		q.Filters[f] = value
	}
	return q
}

// Parse builds a Query from URL query values.
//
// Keys other than the filter fields, page and limit fail with a 401
// ValidationError naming the first offending key in sorted order.
func Parse(values url.Values) (*Query, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := New()
	for _, k := range keys {
		switch k {
		case ParamPage:
			q.Page = parsePositiveInt(values.Get(k), DefaultPage)
		case ParamLimit:
			q.Limit = parsePositiveInt(values.Get(k), DefaultLimit)
		default:
			f := book.Field(k)
			if !f.Filterable() {
				return nil, book.NotAllowed("Query " + k + " is not allowed")
			}
			q.Where(f, values.Get(k))
		}
	}
	return q, nil
}

// parsePositiveInt returns the parsed value, or def when v is not a positive integer.
func parsePositiveInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
