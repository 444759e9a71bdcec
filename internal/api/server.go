// Package api serves the resolver over HTTP.
//
// Routes:
//
//	GET  /healthz                          liveness probe
//	POST /v1/updates                       minimal updates for a batch of roots
//	GET  /v1/closure/{name}/{version}      dependency closure (?expand=true, ?format=dot)
//	GET  /v1/versions/{name}               published versions, ascending
//	GET  /v1/stats                         session and hook counters
//
// Scoped package names are passed URL-escaped ("@babel%2Fcore"). All
// requests share one resolve.Session, so registry metadata fetched for one
// request is reused by the next.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/minbump/pkg/resolve"
)

const (
	// DefaultRequestTimeout caps a single request, including registry round-trips.
	DefaultRequestTimeout = 2 * time.Minute

	// maxBodyBytes bounds POST bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Server exposes a resolve.Session over HTTP.
type Server struct {
	session *resolve.Session
	logger  *log.Logger
	timeout time.Duration
	metrics *Metrics
	router  chi.Router
}

// New creates a Server. A zero timeout uses DefaultRequestTimeout.
func New(session *resolve.Session, logger *log.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	s := &Server{session: session, logger: logger, timeout: timeout, metrics: &Metrics{}}
	s.router = s.routes()
	return s
}

// Metrics returns the server's event counters. They only count once
// registered as hooks with [Metrics.Register].
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.withTimeout)
		r.Post("/updates", s.handleUpdates)
		r.Get("/closure/{name}/{version}", s.handleClosure)
		r.Get("/versions/{name}", s.handleVersions)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
