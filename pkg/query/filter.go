package query

import "github.com/dinhlab/supreme-fiesta/pkg/book"

// Apply filters books by q and returns the requested page.
func Apply(books []book.Book, q *Query) []book.Book {
	if q == nil {
		q = New()
	}
	return Paginate(Filter(books, q.Filters), q.Offset(), q.Limit)
}

// Filter returns the books matching every filter, in their original order.
// With no filters every book matches.
func Filter(books []book.Book, filters map[book.Field]string) []book.Book {
	result := make([]book.Book, 0, len(books))
	for i := range books {
		if matches(&books[i], filters) {
			result = append(result, books[i])
		}
	}
	return result
}

func matches(b *book.Book, filters map[book.Field]string) bool {
	for field, value := range filters {
		if b.Value(field) != value {
			return false
		}
	}
	return true
}

// Paginate returns items[offset:offset+limit], clamped to the slice.
// Out-of-range offsets yield an empty, non-nil slice.
func Paginate(items []book.Book, offset, limit int) []book.Book {
	total := len(items)

	start := offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	end := start + limit
	if end > total || end < start {
		end = total
	}

	page := make([]book.Book, end-start)
	copy(page, items[start:end])
	return page
}
