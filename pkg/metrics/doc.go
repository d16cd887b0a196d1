// Package metrics provides Prometheus-compatible metrics for the bookshelf
// server.
//
// It implements the text exposition format (text/plain; version=0.0.4)
// with Counter, Gauge and Histogram types. All metrics are safe for
// concurrent use, and exposition is ordered deterministically.
//
// # Default Metrics
//
//   - bookshelf_http_requests_total{method,route,status}
//   - bookshelf_http_request_duration_seconds{method,route}
//   - bookshelf_book_mutations_total{operation}
//   - bookshelf_books_stored
//   - bookshelf_errors_total{type}
//   - bookshelf_uptime_seconds and go_* runtime gauges
//
// # Usage
//
//	registry := metrics.Init()
//	if vec, err := metrics.RequestsTotal.WithLabels("GET", "/books", "200"); err == nil {
//	    _ = vec.Inc()
//	}
//	mux.Handle("GET /metrics", registry.Handler())
package metrics
