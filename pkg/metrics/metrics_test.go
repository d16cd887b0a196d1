package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	return string(body)
}

func TestCounter(t *testing.T) {
	t.Run("without labels", func(t *testing.T) {
		r := NewRegistry()
		c := r.NewCounter("test_counter", "A test counter")

		_ = c.Inc()
		_ = c.Inc()
		_ = c.Add(3)

		samples := c.Collect()
		if len(samples) != 1 {
			t.Fatalf("expected 1 sample, got %d", len(samples))
		}
		if samples[0].Value != 5 {
			t.Errorf("expected value 5, got %f", samples[0].Value)
		}
	})

	t.Run("with labels", func(t *testing.T) {
		r := NewRegistry()
		c := r.NewCounter("http_requests", "Total HTTP requests", "method", "status")

		vec, err := c.WithLabels("POST", "200")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = vec.Add(5)
		vec, _ = c.WithLabels("GET", "200")
		_ = vec.Inc()
		vec, _ = c.WithLabels("GET", "200")
		_ = vec.Inc()

		samples := c.Collect()
		if len(samples) != 2 {
			t.Fatalf("expected 2 samples, got %d", len(samples))
		}
		// Ordered by label values.
		if samples[0].Labels["method"] != "GET" || samples[0].Value != 2 {
			t.Errorf("expected GET=2 first, got %v=%f", samples[0].Labels, samples[0].Value)
		}
		if samples[1].Labels["method"] != "POST" || samples[1].Value != 5 {
			t.Errorf("expected POST=5 second, got %v=%f", samples[1].Labels, samples[1].Value)
		}
	})

	t.Run("wrong label count returns error", func(t *testing.T) {
		r := NewRegistry()
		c := r.NewCounter("test", "test", "label1", "label2")
		_, err := c.WithLabels("only_one")
		if !errors.Is(err, ErrLabelCountMismatch) {
			t.Errorf("expected ErrLabelCountMismatch, got %v", err)
		}
	})

	t.Run("negative add returns error", func(t *testing.T) {
		r := NewRegistry()
		c := r.NewCounter("test", "test")
		if err := c.Add(-1); !errors.Is(err, ErrNegativeCounterValue) {
			t.Errorf("expected ErrNegativeCounterValue, got %v", err)
		}
		vec, _ := c.WithLabels()
		if err := vec.Add(-2); !errors.Is(err, ErrNegativeCounterValue) {
			t.Errorf("expected ErrNegativeCounterValue, got %v", err)
		}
	})
}

func TestGauge(t *testing.T) {
	r := NewRegistry()
	g := r.NewGauge("books", "Books stored")

	_ = g.Set(10)
	_ = g.Add(-3)

	samples := g.Collect()
	if len(samples) != 1 || samples[0].Value != 7 {
		t.Fatalf("expected single sample 7, got %v", samples)
	}

	lg := r.NewGauge("labelled", "Labelled gauge", "kind")
	vec, err := lg.WithLabels("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vec.Inc()
	vec.Inc()
	vec.Dec()
	if got := lg.Collect()[0].Value; got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if err := lg.Set(1); !errors.Is(err, ErrLabelCountMismatch) {
		t.Errorf("expected ErrLabelCountMismatch for unlabelled Set, got %v", err)
	}
}

func TestHistogram(t *testing.T) {
	r := NewRegistry()
	h := r.NewHistogram("latency", "Latency", []float64{1, 0.25})

	_ = h.Observe(0.125)
	_ = h.Observe(0.25)
	_ = h.Observe(0.5)
	_ = h.Observe(3)

	samples := h.Collect()
	// 3 buckets (0.25, 1, +Inf) + sum + count
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}

	want := []struct {
		le    string
		value float64
	}{{"0.25", 2}, {"1", 3}, {"+Inf", 4}}
	for i, w := range want {
		s := samples[i]
		if s.Name != "latency_bucket" || s.Labels["le"] != w.le || s.Value != w.value {
			t.Errorf("bucket %d: got %s{le=%s} %f, want le=%s %f", i, s.Name, s.Labels["le"], s.Value, w.le, w.value)
		}
	}
	if samples[3].Name != "latency_sum" || samples[3].Value != 3.875 {
		t.Errorf("unexpected sum sample %+v", samples[3])
	}
	if samples[4].Name != "latency_count" || samples[4].Value != 4 {
		t.Errorf("unexpected count sample %+v", samples[4])
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()

	c := r.NewCounter("test_requests_total", "Total requests", "method")
	g := r.NewGauge("test_active", "Active items")
	h := r.NewHistogram("test_duration_seconds", "Duration", []float64{0.1, 1.0}, "route")
	r.NewCounter("test_unused_total", "Never incremented")

	vec, _ := c.WithLabels("GET")
	_ = vec.Inc()
	vec, _ = c.WithLabels("POST")
	_ = vec.Add(5)
	_ = g.Set(42)
	hv, _ := h.WithLabels("/books")
	hv.Observe(0.5)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("unexpected Content-Type: %s", ct)
	}

	want := strings.Join([]string{
		"# HELP test_requests_total Total requests",
		"# TYPE test_requests_total counter",
		`test_requests_total{method="GET"} 1`,
		`test_requests_total{method="POST"} 5`,
		"# HELP test_active Active items",
		"# TYPE test_active gauge",
		"test_active 42",
		"# HELP test_duration_seconds Duration",
		"# TYPE test_duration_seconds histogram",
		`test_duration_seconds_bucket{route="/books",le="0.1"} 0`,
		`test_duration_seconds_bucket{route="/books",le="1"} 1`,
		`test_duration_seconds_bucket{route="/books",le="+Inf"} 1`,
		`test_duration_seconds_sum{route="/books"} 0.5`,
		`test_duration_seconds_count{route="/books"} 1`,
	}, "\n") + "\n"

	if got := rec.Body.String(); got != want {
		t.Errorf("unexpected exposition:\n%s\nwant:\n%s", got, want)
	}
}

func TestRegistry_OnScrape(t *testing.T) {
	r := NewRegistry()
	g := r.NewGauge("sampled", "Sampled at scrape time")

	calls := 0
	r.OnScrape(func() {
		calls++
		_ = g.Set(float64(calls))
	})

	if out := scrape(t, r); !strings.Contains(out, "sampled 1") {
		t.Errorf("expected first scrape to report 1, got:\n%s", out)
	}
	if out := scrape(t, r); !strings.Contains(out, "sampled 2") {
		t.Errorf("expected second scrape to report 2, got:\n%s", out)
	}
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("dup", "first")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate metric name")
		}
	}()
	r.NewGauge("dup", "second")
}

func TestConcurrency(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("concurrent_counter", "Test counter", "worker")
	g := r.NewGauge("concurrent_gauge", "Test gauge")
	h := r.NewHistogram("concurrent_histogram", "Test histogram", []float64{1, 10, 100})

	var wg sync.WaitGroup
	workers := 50
	iterations := 200

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				vec, _ := c.WithLabels("worker")
				_ = vec.Inc()
				_ = g.Add(1)
				_ = h.Observe(float64(j % 50))
			}
		}()
	}

	wg.Wait()

	expected := float64(workers * iterations)
	if got := c.Collect()[0].Value; got != expected {
		t.Errorf("counter: expected %f, got %f", expected, got)
	}
	if got := g.Collect()[0].Value; got != expected {
		t.Errorf("gauge: expected %f, got %f", expected, got)
	}
	samples := h.Collect()
	if got := samples[len(samples)-1].Value; got != expected {
		t.Errorf("histogram count: expected %f, got %f", expected, got)
	}
}

func TestDefaultMetrics(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	registry := Init()
	if registry == nil {
		t.Fatal("Init() returned nil")
	}
	if RequestsTotal == nil || RequestDuration == nil || BookMutationsTotal == nil ||
		BooksStored == nil || ErrorsTotal == nil || UptimeSeconds == nil {
		t.Fatal("default metrics not initialized")
	}

	if vec, err := RequestsTotal.WithLabels("GET", "/books", "200"); err == nil {
		_ = vec.Inc()
	}
	if vec, err := RequestDuration.WithLabels("GET", "/books"); err == nil {
		vec.Observe(0.012)
	}
	if vec, err := BookMutationsTotal.WithLabels("created"); err == nil {
		_ = vec.Inc()
	}
	_ = BooksStored.Set(3)

	output := scrape(t, registry)
	for _, want := range []string{
		`bookshelf_http_requests_total{method="GET",route="/books",status="200"} 1`,
		`bookshelf_http_request_duration_seconds_count{method="GET",route="/books"} 1`,
		`bookshelf_book_mutations_total{operation="created"} 1`,
		"bookshelf_books_stored 3",
		"bookshelf_uptime_seconds ",
		"go_goroutines ",
		"go_info{version=",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if Init() != registry {
		t.Error("Init() should return the same registry on subsequent calls")
	}
}

func TestDefaultRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if DefaultRegistry() != nil {
		t.Error("DefaultRegistry() should return nil before Init()")
	}
	Init()
	if DefaultRegistry() == nil {
		t.Error("DefaultRegistry() should return the registry after Init()")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{42, "42"},
		{-3, "-3"},
		{0.5, "0.5"},
		{0.123456789, "0.123456789"},
		{1e10, "10000000000"},
		{1e20, "1e+20"},
	}

	for _, tt := range tests {
		if got := formatFloat(tt.value); got != tt.expected {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

func TestEscapeLabelValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{`with "quotes"`, `with \"quotes\"`},
		{"with\nnewline", `with\nnewline`},
		{`back\\slash`, `back\\\\slash`},
	}

	for _, tt := range tests {
		if got := escapeLabelValue(tt.input); got != tt.expected {
			t.Errorf("escapeLabelValue(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkCounterWithLabels(b *testing.B) {
	r := NewRegistry()
	c := r.NewCounter("bench_counter", "Benchmark counter", "method", "status")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			vec, _ := c.WithLabels("GET", "200")
			_ = vec.Inc()
		}
	})
}

func BenchmarkHandler(b *testing.B) {
	r := NewRegistry()
	h := r.NewHistogram("test_histogram", "Test", DefaultBuckets, "method")
	for _, method := range []string{"GET", "POST"} {
		vec, _ := h.WithLabels(method)
		for i := 0; i < 100; i++ {
			vec.Observe(float64(i) / 1000.0)
		}
	}

	handler := r.Handler()
	req := httptest.NewRequest("GET", "/metrics", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
