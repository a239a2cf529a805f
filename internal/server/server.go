// Package server exposes the simulator over HTTP and JSON.
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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"qsim/internal/config"
	"qsim/internal/logging"
	"qsim/internal/resource"
	"qsim/internal/simulator"
)

const (
	// maxBodyBytes bounds a /simulate request body.
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Server serves the simulator API.
type Server struct {
	sim          *simulator.Simulator
	cfg          config.ServerConfig
	defaultShots int
	resources    *resource.Controller
	logger       *slog.Logger
	version      string

	metrics *metrics
	limiter *clientLimiter
	handler http.Handler

	mu   sync.Mutex
	addr string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaultShots sets the shot count for requests that omit one.
func WithDefaultShots(n int) Option {
	return func(s *Server) { s.defaultShots = n }
}

// WithResources exports the controller's usage as gauges on /metrics. It
// should be the controller the simulator was built with.
func WithResources(rc *resource.Controller) Option {
	return func(s *Server) { s.resources = rc }
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds a Server around sim.
func New(sim *simulator.Simulator, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		sim:          sim,
		cfg:          cfg,
		defaultShots: 1024,
		logger:       logging.Discard(),
		version:      "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.resources)
	s.limiter = newClientLimiter(cfg.RateLimit, cfg.Burst)
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the address the server is listening on, or "" before
// ListenAndServe has bound its socket.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.limited(s.handleStatus))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /simulate", s.limited(s.handleSimulate))
	mux.HandleFunc("GET /gates", s.limited(s.handleGates))
	mux.HandleFunc("GET /examples", s.limited(s.handleExamples))
	mux.HandleFunc("GET /examples/{id}", s.limited(s.handleExample))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: len(s.cfg.AllowedOrigins) > 0,
	})
	return s.observe(c.Handler(mux))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// observe tags every request with an id, then logs and counts it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(route, rec.code, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", elapsed,
			"request_id", id,
		)
	})
}

// limited applies the per-client rate limit.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			s.metrics.rateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		h(w, r)
	}
}

// ListenAndServe binds cfg.Addr and serves until ctx is cancelled, then
// shuts down gracefully. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.logger.Info("server listening", "addr", s.addr, "max_qubits", s.sim.MaxQubits(), "max_shots", s.sim.MaxShots())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
