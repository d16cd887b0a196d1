package metrics

import "sync"

// Default metrics for the bookshelf server, created by Init.
//
// Label values:
//   - method: uppercase HTTP method
//   - route: the matched route pattern such as "/books/{bookId}", or
//     "unmatched", never the raw path
//   - status: numeric HTTP status
//   - operation: created, updated, deleted
//   - type: storage, validation, not_found, not_allowed, panic
var (
	// RequestsTotal counts HTTP requests.
	// Labels: method, route, status
	RequestsTotal *Counter

	// RequestDuration tracks request latency in seconds.
	// Labels: method, route
	RequestDuration *Histogram

	// BookMutationsTotal counts persisted mutations.
	// Labels: operation
	BookMutationsTotal *Counter

	// BooksStored is the number of books after the last load or save.
	BooksStored *Gauge

	// ErrorsTotal counts failed requests by cause.
	// Labels: type
	ErrorsTotal *Counter

	// UptimeSeconds is the process uptime, sampled at scrape time.
	UptimeSeconds *Gauge

	defaultRegistry *Registry
	initOnce        sync.Once
)

// Init initializes the default metrics and returns the registry.
// It is idempotent.
func Init() *Registry {
	initOnce.Do(func() {
		r := NewRegistry()

		RequestsTotal = r.NewCounter(
			"bookshelf_http_requests_total",
			"Total number of HTTP requests",
			"method", "route", "status",
		)
		RequestDuration = r.NewHistogram(
			"bookshelf_http_request_duration_seconds",
			"Duration of HTTP requests in seconds",
			DefaultBuckets,
			"method", "route",
		)
		BookMutationsTotal = r.NewCounter(
			"bookshelf_book_mutations_total",
			"Total number of persisted book mutations",
			"operation",
		)
		BooksStored = r.NewGauge(
			"bookshelf_books_stored",
			"Number of books in the dataset",
		)
		ErrorsTotal = r.NewCounter(
			"bookshelf_errors_total",
			"Total number of failed requests by type",
			"type",
		)
		UptimeSeconds = r.NewGauge(
			"bookshelf_uptime_seconds",
			"Server uptime in seconds",
		)

		RegisterRuntime(r, UptimeSeconds)
		defaultRegistry = r
	})
	return defaultRegistry
}

// DefaultRegistry returns the default registry, or nil before Init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Reset clears the default metrics so Init builds them again. For tests.
func Reset() {
	initOnce = sync.Once{}
	defaultRegistry = nil
	RequestsTotal = nil
	RequestDuration = nil
	BookMutationsTotal = nil
	BooksStored = nil
	ErrorsTotal = nil
	UptimeSeconds = nil
}
