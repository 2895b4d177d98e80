// Package server implements the bubblegraph HTTP service: bubble-map
// rendering and map metadata over a chi router, with Prometheus metrics and
// per-request structured logging.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokenviz/bubblegraph/pkg/config"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/pipeline"
	"github.com/tokenviz/bubblegraph/pkg/store"
)

// MapArchive is the slice of the map store the server needs. *store.MapStore
// implements it; tests substitute an in-memory archive.
type MapArchive interface {
	Archive(ctx context.Context, doc *mapdata.Document, mapHash string) error
	Latest(ctx context.Context, chain, token string) (*store.ArchivedMap, error)
	History(ctx context.Context, chain, token string, limit int64) ([]store.ArchivedMap, error)
}

// Server wires the pipeline runner, the optional map archive, and the HTTP
// routes together.
type Server struct {
	runner  *pipeline.Runner
	store   MapArchive
	cfg     config.Config
	logger  *log.Logger
	metrics *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithStore attaches the map archive. Fetched documents are archived
// best-effort after each uncached fetch, and the archive backs the
// /map-history route and the metadata fallback.
func WithStore(s MapArchive) Option {
	return func(srv *Server) { srv.store = s }
}

// New creates a server around a pipeline runner.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	srv := &Server{
		runner:  runner,
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/bubble-map", s.handleBubbleMap)
	r.Get("/map-metadata", s.handleMapMetadata)
	r.Get("/map-history", s.handleMapHistory)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe runs the service until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// optionsFromQuery translates request query parameters into pipeline options.
func (s *Server) optionsFromQuery(r *http.Request) pipeline.Options {
	q := r.URL.Query()
	opts := pipeline.Options{
		Token:    q.Get("token"),
		Chain:    q.Get("chain"),
		Refresh:  q.Get("refresh") == "true",
		Grid:     q.Get("grid") == "true",
		Denylist: s.cfg.EffectiveDenylist(),
		Sim:      s.cfg.SimConfig(),
		Encoding: s.cfg.EncoderConfig(),
		Logger:   s.logger,
	}
	if v, err := strconv.ParseFloat(q.Get("width"), 64); err == nil {
		opts.Width = v
	}
	if v, err := strconv.ParseFloat(q.Get("height"), 64); err == nil {
		opts.Height = v
	}
	if v, err := strconv.ParseFloat(q.Get("scale"), 64); err == nil {
		opts.Scale = v
	}
	if v, err := strconv.Atoi(q.Get("ticks")); err == nil {
		opts.Ticks = v
	}
	if v, err := strconv.ParseUint(q.Get("seed"), 10, 64); err == nil {
		opts.Seed = v
	}
	if format := q.Get("format"); format != "" {
		opts.Formats = []string{format}
	}
	return opts
}
