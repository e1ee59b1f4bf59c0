// Package server serves share links and the JSON API.
//
// Routes:
//
//	GET  /healthz
//	GET  /s/{token}                 decoded grid for a share link
//	GET  /api/v1/tokens/{token}     same; ?placements=true adds pip positions
//	POST /api/v1/tokens             {"grid": [[...], ...]} -> token and share URL
//	POST /api/v1/lattice/free       nearest free lattice site to a point
//	POST /api/v1/lattice/pack       free sites packed around a point
//
// Errors are returned as {"code", "message", "request_id"} with a status
// taken from errors.HTTPStatus.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pipgrid/internal/config"
	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP front end over a pipeline.Runner.
type Server struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server. The runner's cache is owned by the caller.
func New(cfg *config.Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(instrument)
		r.Get("/s/{token}", s.handleGetToken)
		r.Get("/api/v1/tokens/{token}", s.handleGetToken)
		r.Post("/api/v1/tokens", s.handleCreateToken)
		r.Post("/api/v1/lattice/free", s.handleLatticeFree)
		r.Post("/api/v1/lattice/pack", s.handleLatticePack)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String(), "base_url", s.cfg.Server.BaseURL)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
