package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/dinhlab/supreme-fiesta/pkg/catalog"
	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/metrics"
	"github.com/dinhlab/supreme-fiesta/pkg/ratelimit"
)

// DefaultAddress is used when Options.Addr is empty.
const DefaultAddress = ":3000"

// Options configures the HTTP server.
type Options struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	CORS              CORSConfig
	Logger            *slog.Logger

	// RateLimit limits requests per client IP. Disabled when Rate is zero.
	RateLimit ratelimit.Config

	// Version is reported in the OpenAPI document.
	Version string
}

// Server serves the catalog over HTTP.
type Server struct {
	svc     *catalog.Service
	opts    Options
	log     *slog.Logger
	handler http.Handler
	srv     *http.Server
	openapi *openapi3.T
	limiter *ratelimit.Limiter

	mu       sync.Mutex
	stopBg   context.CancelFunc
	listener net.Listener
	done     chan struct{}
	serveErr error
}

// New builds a Server around svc. It does not listen until Start.
func New(svc *catalog.Service, opts Options) (*Server, error) {
	if svc == nil {
		return nil, errors.New("catalog service is required")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 120 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.CORS.AllowedOrigins == nil {
		opts.CORS = DefaultCORSConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	doc, err := OpenAPI(opts.Version)
	if err != nil {
		return nil, err
	}
	var limiter *ratelimit.Limiter
	if opts.RateLimit.Enabled() {
		if limiter, err = ratelimit.New(opts.RateLimit); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	metrics.Init()

	s := &Server{
		svc:     svc,
		opts:    opts,
		log:     opts.Logger,
		openapi: doc,
		limiter: limiter,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = chain(mux,
		requestIDMiddleware,
		loggingMiddleware(s.log),
		metricsMiddleware,
		recoverMiddleware(s.log),
		corsMiddleware(opts.CORS),
		ratelimit.Middleware(limiter, s.handleRateLimited),
	)

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	svc.AddChangeListener(s.onChange)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in a background goroutine.
// Bind errors are returned directly.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	if n, err := s.svc.Count(ctx); err != nil {
		s.log.Warn("data store not readable at startup", "error", err)
	} else {
		_ = metrics.BooksStored.Set(float64(n))
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.done = make(chan struct{})

	bgCtx, cancel := context.WithCancel(context.Background())
	s.stopBg = cancel
	if s.limiter != nil {
		go s.limiter.Run(bgCtx)
	}

	go func() {
		defer close(s.done)
		s.log.Info("server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", "error", err)
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
		}
	}()
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Done is closed when the serve loop exits.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that ended the serve loop, if any.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	if timeout := s.opts.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s.log.Info("server shutting down")
	s.mu.Lock()
	if s.stopBg != nil {
		s.stopBg()
	}
	s.mu.Unlock()
	return s.srv.Shutdown(ctx)
}

// onChange keeps mutation metrics current and logs each change.
func (s *Server) onChange(ev catalog.ChangeEvent) {
	if vec, err := metrics.BookMutationsTotal.WithLabels(string(ev.Operation)); err == nil {
		_ = vec.Inc()
	}
	_ = metrics.BooksStored.Set(float64(ev.Books))
	s.log.Debug("book "+string(ev.Operation), "id", ev.ID, "books", ev.Books)
}
