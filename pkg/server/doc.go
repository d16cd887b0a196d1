// Package server exposes the book catalog over HTTP.
//
// Routes:
//
//	GET    /                 greeting (text)
//	GET    /books            list with filters and pagination
//	POST   /books            create
//	GET    /books/{bookId}   fetch one
//	PUT    /books/{bookId}   partial update
//	DELETE /books/{bookId}   delete
//	GET    /health           liveness
//	GET    /metrics          Prometheus text format
//	GET    /openapi.json     OpenAPI 3 description of the routes above
//
// Any other method or path answers 404 "Path not found". Failures carry the
// status of the error that caused them; see httputil.WriteError.
//
// Every response carries X-Request-ID. With Options.RateLimit set, clients
// over their budget get 429 with Retry-After.
package server
