package server

import (
	"net/http"

	"github.com/dinhlab/supreme-fiesta/pkg/httputil"
	"github.com/dinhlab/supreme-fiesta/pkg/metrics"
	"github.com/dinhlab/supreme-fiesta/pkg/query"
)

func (s *Server) handleGreeting(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteText(w, http.StatusOK, Greeting)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteNotFound(w, ErrMsgPathNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	q, err := query.Parse(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	books, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteOK(w, books)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	raw, err := readObject(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := decodeCreate(raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.svc.Create(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteOK(w, created)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Get(r.Context(), r.PathValue("bookId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteOK(w, b)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	raw, err := readObject(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := decodeUpdate(raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.svc.Update(r.Context(), r.PathValue("bookId"), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteOK(w, updated)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("bookId")); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteOK(w, struct{}{})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, s.openapi)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteText(w, http.StatusTooManyRequests, ErrMsgTooManyRequests)
	if vec, err := metrics.ErrorsTotal.WithLabels(errorTypeRateLimited); err == nil {
		_ = vec.Inc()
	}
}

// fail writes err, counts it and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if vec, verr := metrics.ErrorsTotal.WithLabels(errorType(err)); verr == nil {
		_ = vec.Inc()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}
}

func metricsHandler() http.Handler {
	return metrics.Init().Handler()
}
