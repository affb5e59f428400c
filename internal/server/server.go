package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/snapshot"
	"github.com/rohankatakam/graphscope/internal/subgraph"
	"github.com/rohankatakam/graphscope/internal/tables"
)

// Options configures the HTTP surface
type Options struct {
	Addr            string
	CORSOrigins     []string
	RateLimit       float64 // requests per second on projection routes (0 = unlimited)
	RateBurst       int
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Deps are the read-only collaborators shared by every request
type Deps struct {
	Engine *subgraph.Engine
	Key    subgraph.EntityKey

	// Snapshots serves /getGraphData; nil disables the route's data
	Snapshots snapshot.Source
	// Tables serves /getTableData; nil disables the route's data
	Tables tables.Source
	// Health backs /healthz; nil reports healthy
	Health subgraph.HealthChecker
}

// Server exposes subgraph projections over HTTP.
// It holds no per-client state: every projection request carries the ids of the
// client's current view.
type Server struct {
	deps       Deps
	opts       Options
	logger     *logrus.Logger
	limiter    *rate.Limiter
	handler    http.Handler
	httpServer *http.Server
}

// New wires routes and middleware. The server does not listen until Run.
func New(deps Deps, opts Options, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		deps:   deps,
		opts:   opts,
		logger: logger,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Recovery must be outermost; CORS answers preflights before the mux sees them
	var handler http.Handler = mux
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /getGraphData", s.handleGraphData)
	mux.HandleFunc("GET /getTableData", s.handleTableData)

	mux.Handle("POST /retrieveSubgraph", s.rateLimitMiddleware(http.HandlerFunc(s.handleRetrieveSubgraph)))
	mux.Handle("POST /deleteNode", s.rateLimitMiddleware(http.HandlerFunc(s.handleDeleteNode)))
	mux.Handle("POST /expandNode", s.rateLimitMiddleware(http.HandlerFunc(s.handleExpandNode)))
}

// Handler returns the fully wrapped handler, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// Options.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.ConfigErrorf("listen on %s: %v", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	if s.opts.ShutdownTimeout <= 0 {
		return s.httpServer.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Warn("Graceful shutdown incomplete, closing connections")
		return s.httpServer.Close()
	}
	return nil
}
