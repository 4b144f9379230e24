// Package api serves discovery results over HTTP.
//
//	GET /v1/ports              fresh snapshot of every component
//	GET /v1/ports/{component}  one component's entry
//	GET /v1/definitions        port definitions of registered types
//	GET /v1/stats              collector snapshot
//	GET /healthz               liveness
//	GET /metrics               Prometheus exposition
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lports/config"
	"lports/internal/discovery"
	ncerr "lports/internal/errors"
	"lports/internal/metrics"
	"lports/internal/retry"
	"lports/util"
)

// Server publishes a discovery host.
type Server struct {
	host     *discovery.Host
	metrics  *metrics.Collector
	logger   *util.Logger
	registry *prometheus.Registry
	router   *mux.Router

	// Backoff controls how binding an address in use is retried.
	Backoff *retry.Backoff
}

// New builds the router and registers the collector on a private
// Prometheus registry.
func New(host *discovery.Host, mc *metrics.Collector, logger *util.Logger) (*Server, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if mc != nil {
		if err := mc.Register(reg); err != nil {
			return nil, err
		}
	}

	b := retry.DefaultBackoff()
	b.MaxAttempts = config.DefaultBindAttempts
	s := &Server{
		host:     host,
		metrics:  mc,
		logger:   logger,
		registry: reg,
		Backoff:  b,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	// Routes stay on r itself: a subrouter only answers 405 when it has
	// its own MethodNotAllowedHandler.
	r.HandleFunc("/v1/ports", s.ports).Methods(http.MethodGet)
	r.HandleFunc("/v1/ports/{component}", s.component).Methods(http.MethodGet)
	r.HandleFunc("/v1/definitions", s.definitions).Methods(http.MethodGet)
	r.HandleFunc("/v1/stats", s.stats).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ── Handlers ─────────────────────────────────────────────────────────

func (s *Server) ports(w http.ResponseWriter, r *http.Request) {
	snap, err := s.host.Discover(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) component(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["component"]
	snap, err := s.host.Discover(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	for _, e := range snap.Entries {
		if e.Name == name {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "no component named "+name)
}

func (s *Server) definitions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.host.Definitions())
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"components": len(s.host.Registrations()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ── Serving ──────────────────────────────────────────────────────────

// Serve listens on addr and serves until ctx is cancelled, then shuts
// down gracefully within config.DefaultGracePeriod.  An address still
// in use is retried with s.Backoff.
func (s *Server) Serve(ctx context.Context, addr string) error {
	var ln net.Listener
	err := s.Backoff.Do(ctx, func(attempt int) error {
		var err error
		ln, err = net.Listen("tcp", addr)
		if err == nil {
			return nil
		}
		if ncerr.Is(err, syscall.EADDRINUSE) || ncerr.IsRetryable(err) {
			s.logger.Warn("bind %s (attempt %d): %v", addr, attempt, err)
			return err
		}
		return retry.Permanent(err)
	})
	if err != nil {
		return ncerr.Wrap("listen", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: config.DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("discovery API listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		return ncerr.Wrap("serve", ln.Addr().String(), err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return ncerr.Wrap("shutdown", ln.Addr().String(), err)
	}
	if err := <-errCh; err != nil && !ncerr.Is(err, http.ErrServerClosed) {
		return ncerr.Wrap("serve", ln.Addr().String(), err)
	}
	s.logger.Verbose("discovery API stopped")
	return nil
}
