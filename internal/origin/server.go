// Package origin serves a local asset root over HTTP for the local
// provider. Responses carry no-store cache headers so measurement
// fetches always hit the handler instead of an intermediary cache.
package origin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediabench/mediabench/internal/metrics"
)

// Server hosts the asset tree plus health and optional Prometheus
// metrics endpoints.
type Server struct {
	addr   string
	root   string
	instr  *metrics.Instrumentation
	logger *slog.Logger

	httpServer *http.Server
}

// NewServer creates a server for the asset tree rooted at root. A nil
// instrumentation disables the /metrics endpoint.
func NewServer(addr, root string, instr *metrics.Instrumentation) *Server {
	s := &Server{
		addr:   addr,
		root:   root,
		instr:  instr,
		logger: slog.Default().With("component", "origin"),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if instr != nil {
		r.Handle("/metrics", promhttp.HandlerFor(instr.Registry(), promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	fileServer := http.StripPrefix("/assets/", http.FileServer(http.Dir(root)))
	r.Get("/assets/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		fileServer.ServeHTTP(w, req)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("origin server starting", "addr", s.addr, "root", s.root)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("origin server stopping")
	return s.httpServer.Shutdown(ctx)
}
