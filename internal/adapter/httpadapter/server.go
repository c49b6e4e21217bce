package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the catalog API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /v1/events routes backed by cat. Readiness follows the outcome of the most
// recent upstream fetch made through the API.
func NewServer(addr string, cat Catalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	upstream := &upstreamReadiness{}
	api := &apiHandler{catalog: cat, upstream: upstream, logger: logger}

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      requestID(logRequests(logger, mux)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(upstream))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/events/{id}", api.handleEvent)
	mux.HandleFunc("GET /v1/events/{id}/aftershocks", api.handleAftershocks)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
