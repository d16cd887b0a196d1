package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinhlab/supreme-fiesta/internal/id"
	"github.com/dinhlab/supreme-fiesta/pkg/book"
	"github.com/dinhlab/supreme-fiesta/pkg/catalog"
	"github.com/dinhlab/supreme-fiesta/pkg/ratelimit"
	"github.com/dinhlab/supreme-fiesta/pkg/store/file"
)

func seedBooks() []book.Book {
	return []book.Book{
		{ID: "aaaaaaa1", Author: "Chinua Achebe", Country: "Nigeria", Language: "English", Title: "Things Fall Apart", Pages: 209, Year: 1958},
		{ID: "aaaaaaa2", Author: "Hans Christian Andersen", Country: "Denmark", Language: "Danish", Title: "Fairy tales", Pages: 784, Year: 1836},
		{ID: "aaaaaaa3", Author: "X", Country: "Y", Language: "En", Title: "First", Pages: 1, Year: 1},
		{ID: "aaaaaaa4", Author: "X", Country: "Y", Language: "En", Title: "Second", Pages: 2, Year: 2},
	}
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	path    string
}

func newTestEnv(t *testing.T, books ...book.Book) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	st := file.New(path)
	require.NoError(t, st.Save(context.Background(), book.NewDataset(books...)))

	srv, err := New(catalog.New(st), Options{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	return &testEnv{srv: srv, handler: srv.Handler(), path: path}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBooks(t *testing.T, rec *httptest.ResponseRecorder) []book.Book {
	t.Helper()
	var books []book.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	return books
}

func decodeBook(t *testing.T, rec *httptest.ResponseRecorder) book.Book {
	t.Helper()
	var b book.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestGreeting(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Greeting, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestUnmatchedPath(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/"},
		{http.MethodDelete, "/books"},
		{http.MethodPatch, "/books/aaaaaaa1"},
		{http.MethodGet, "/books/aaaaaaa1/extra"},
	} {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, ErrMsgPathNotFound, rec.Body.String())
		})
	}
}

func TestListBooks(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	t.Run("all", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Len(t, decodeBooks(t, rec), 4)
	})

	t.Run("filter and paginate", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books?language=En&page=2&limit=1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		books := decodeBooks(t, rec)
		require.Len(t, books, 1)
		assert.Equal(t, "Second", books[0].Title)
	})

	t.Run("filters combine", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books?author=X&title=First", "")
		require.Equal(t, http.StatusOK, rec.Code)
		books := decodeBooks(t, rec)
		require.Len(t, books, 1)
		assert.Equal(t, "aaaaaaa3", books[0].ID)
	})

	t.Run("empty filter is ignored", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books?author=", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBooks(t, rec), 4)
	})

	t.Run("past the end", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books?page=9", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("disallowed key", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/books?pages=10", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Query pages is not allowed", rec.Body.String())
	})
}

func TestCreateBook(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	rec := env.do(t, http.MethodPost, "/books",
		`{"author":"A","country":"B","imageLink":"x","language":"En","pages":"10","title":"T","year":"2000"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBook(t, rec)
	assert.True(t, id.IsBookID(created.ID), "id %q", created.ID)
	assert.Equal(t, 10, created.Pages)
	assert.Equal(t, 2000, created.Year)
	assert.Equal(t, "A", created.Author)

	got := env.do(t, http.MethodGet, "/books/"+created.ID, "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created, decodeBook(t, got))

	all := decodeBooks(t, env.do(t, http.MethodGet, "/books?limit=100", ""))
	require.Len(t, all, 5)
	assert.Equal(t, created.ID, all[4].ID)
}

func TestCreateBook_IntegralNumbers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/books",
		`{"author":"A","country":"B","imageLink":"x","language":"En","pages":10.0,"title":"T","year":1e3}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBook(t, rec)
	assert.Equal(t, 10, created.Pages)
	assert.Equal(t, 1000, created.Year)
}

func TestCreateBook_Form(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"author": {"A"}, "country": {"B"}, "imageLink": {"x"}, "language": {"En"},
		"pages": {"12"}, "title": {"T"}, "year": {"1999"},
	}
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBook(t, rec)
	assert.Equal(t, 12, created.Pages)
	assert.Equal(t, 1999, created.Year)
}

func TestCreateBook_Validation(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	rec := env.do(t, http.MethodPost, "/books", `{"author":"","pages":"0"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Errors []struct {
			Type     string `json:"type"`
			Msg      string `json:"msg"`
			Path     string `json:"path"`
			Location string `json:"location"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 7)
	assert.Equal(t, "author", resp.Errors[0].Path)
	assert.Equal(t, "body", resp.Errors[0].Location)
	assert.Equal(t, "field", resp.Errors[0].Type)

	assert.Len(t, decodeBooks(t, env.do(t, http.MethodGet, "/books?limit=100", "")), 4)
}

func TestCreateBook_BadBodies(t *testing.T) {
	env := newTestEnv(t)

	t.Run("invalid json", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/books", `{"author":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrMsgInvalidJSON, rec.Body.String())
	})

	t.Run("not an object", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/books", `[1,2]`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrMsgNotObject, rec.Body.String())
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"author":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		rec := env.do(t, http.MethodPost, "/books", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestUpdateBook(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	t.Run("applies fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/books/aaaaaaa1", `{"title":"New","pages":300}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decodeBook(t, rec)
		assert.Equal(t, "New", updated.Title)
		assert.Equal(t, 300, updated.Pages)
		assert.Equal(t, "Chinua Achebe", updated.Author)
		assert.Equal(t, "aaaaaaa1", updated.ID)
	})

	t.Run("disallowed field", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/books/aaaaaaa1", `{"id":"zzz","title":"Other"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, book.UpdateNotAllowedMessage, rec.Body.String())

		got := decodeBook(t, env.do(t, http.MethodGet, "/books/aaaaaaa1", ""))
		assert.Equal(t, "New", got.Title)
	})

	t.Run("wrong type", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/books/aaaaaaa1", `{"pages":"many"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing book", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/books/deadbeef", `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, book.NotFoundMessage, rec.Body.String())
	})
}

func TestDeleteBook(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	rec := env.do(t, http.MethodDelete, "/books/aaaaaaa2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", strings.TrimSpace(rec.Body.String()))

	again := env.do(t, http.MethodDelete, "/books/aaaaaaa2", "")
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, book.NotFoundMessage, again.Body.String())

	got := env.do(t, http.MethodGet, "/books/aaaaaaa2", "")
	assert.Equal(t, http.StatusNotFound, got.Code)
	assert.Len(t, decodeBooks(t, env.do(t, http.MethodGet, "/books", "")), 3)
}

func TestStorageFailures(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)
	require.NoError(t, os.WriteFile(env.path, []byte("{not json"), 0o644))

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodGet, "/books", ""},
		{http.MethodGet, "/books/aaaaaaa1", ""},
		{http.MethodPost, "/books", `{"author":"A","country":"B","imageLink":"x","language":"En","pages":1,"title":"T","year":1}`},
		{http.MethodPut, "/books/aaaaaaa1", `{"title":"x"}`},
		{http.MethodDelete, "/books/aaaaaaa1", ""},
	} {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, ErrMsgInternalError, rec.Body.String())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		require.NoError(t, os.Remove(env.path))
		rec := env.do(t, http.MethodGet, "/books", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("greeting still works", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)
	env.do(t, http.MethodGet, "/books", "")
	env.do(t, http.MethodDelete, "/books/aaaaaaa4", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bookshelf_http_requests_total{method="GET",route="/books",status="200"}`)
	assert.Contains(t, body, `bookshelf_book_mutations_total{operation="deleted"}`)
	assert.Contains(t, body, "bookshelf_books_stored 3")
	assert.Contains(t, body, "go_goroutines")
}

func TestOpenAPIEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/openapi.json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/books/{bookId}")
}

func TestStartStop(t *testing.T) {
	env := newTestEnv(t, seedBooks()...)

	require.NoError(t, env.srv.Start(context.Background()))
	assert.Error(t, env.srv.Start(context.Background()))

	resp, err := http.Get("http://" + env.srv.Addr() + "/books")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, env.srv.Stop(context.Background()))
	<-env.srv.Done()
	assert.NoError(t, env.srv.Err())
}

func TestRateLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	st := file.New(path)
	require.NoError(t, st.Save(context.Background(), book.NewDataset(seedBooks()...)))

	srv, err := New(catalog.New(st), Options{RateLimit: ratelimit.Config{Rate: 0.5, Burst: 2}})
	require.NoError(t, err)
	h := srv.Handler()

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))
		codes[i] = rec.Code
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, ErrMsgTooManyRequests, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = New(catalog.New(st), Options{RateLimit: ratelimit.Config{Rate: 1, TrustedProxies: []string{"bogus"}}})
	assert.Error(t, err)
}
