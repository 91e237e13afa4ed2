package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fung04/ucsconv/pkg/convert"
	"github.com/fung04/ucsconv/pkg/store"
)

// Config configures the API server.
type Config struct {
	Addr    string
	Auth    *AuthConfig // nil = no authentication
	Store   *store.Store
	Options convert.Options
	Log     *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	conv       *convert.Converter
	log        *slog.Logger
	startTime  time.Time

	convertsTotal   prometheus.Counter
	convertErrors   prometheus.Counter
	convertDuration prometheus.Histogram
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		store:     cfg.Store,
		conv:      convert.New(cfg.Options, log),
		log:       log,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Prometheus metrics with isolated registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(s))
	s.convertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ucsconv_convert_requests_total",
		Help: "Total conversion requests handled.",
	})
	s.convertErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ucsconv_convert_errors_total",
		Help: "Total conversion requests that failed entirely.",
	})
	s.convertDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ucsconv_convert_duration_seconds",
		Help:    "Time spent converting one request.",
		Buckets: prometheus.DefBuckets,
	})
	registry.MustRegister(s.convertsTotal, s.convertErrors, s.convertDuration)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// REST API v1
	mux.HandleFunc("GET /api/v1/status", s.statusHandler)
	mux.HandleFunc("GET /api/v1/documents", s.documentsHandler)
	mux.HandleFunc("GET /api/v1/documents/{name}", s.documentHandler)
	mux.HandleFunc("GET /api/v1/documents/{name}/groups", s.documentGroupsHandler)
	mux.HandleFunc("POST /api/v1/convert", s.convertHandler)
	mux.HandleFunc("POST /api/v1/convert/archive", s.convertArchiveHandler)

	var handler http.Handler = mux
	if cfg.Auth != nil {
		handler = authMiddleware(*cfg.Auth, mux)
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	return s
}

// Handler returns the server's root handler, wrapped with auth if configured.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP API server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
