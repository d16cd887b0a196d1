package server

import "net/http"

// registerRoutes sets up all routes. The bare "/" pattern catches every
// request no other route matches, whatever its method.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleGreeting)

	mux.HandleFunc("GET /books", s.handleListBooks)
	mux.HandleFunc("POST /books", s.handleCreateBook)
	mux.HandleFunc("GET /books/{bookId}", s.handleGetBook)
	mux.HandleFunc("PUT /books/{bookId}", s.handleUpdateBook)
	mux.HandleFunc("DELETE /books/{bookId}", s.handleDeleteBook)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)

	mux.HandleFunc("/", s.handleNotFound)
}
