// Package server exposes layouts, renders and live sessions over HTTP.
//
// # Endpoints
//
//	GET    /healthz
//	POST   /v1/layout                    board -> layout
//	POST   /v1/render/{format}           board -> svg, png, pdf or json
//	POST   /v1/sessions                  start a live session
//	GET    /v1/sessions/{id}             current view
//	GET    /v1/sessions/{id}/layout      every placement measured so far
//	POST   /v1/sessions/{id}/viewport    scroll or resize
//	POST   /v1/sessions/{id}/changes     insert, remove, replace, move, reset
//	PATCH  /v1/sessions/{id}/options     change layout settings
//	DELETE /v1/sessions/{id}
//
// Errors are JSON objects carrying the machine-readable code from
// pkg/errors; the code also selects the HTTP status.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
	"github.com/matzehuels/masonry/pkg/virtual"
)

const shutdownTimeout = 10 * time.Second

// Config holds server settings and request defaults.
type Config struct {
	Addr            string
	RequestTimeout  time.Duration
	CleanupInterval time.Duration
	MaxBodyBytes    int64

	// Defaults fill layout settings the request and the board leave unset.
	Defaults board.Settings

	// Viewport and CacheLength apply to sessions created without them.
	Viewport    virtual.Viewport
	CacheLength float64

	// Render defaults.
	Theme  string
	Labels bool
	Guides bool
	Scale  float64
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Manager
	logger   *log.Logger
	cfg      Config
	router   chi.Router
}

// New creates a server. The runner and the session manager stay owned by
// the caller.
func New(runner *pipeline.Runner, sessions *session.Manager, logger *log.Logger, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		runner:   runner,
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.withSession(s.handleGetSession))
				r.Get("/layout", s.withSession(s.handleSessionLayout))
				r.Post("/viewport", s.withSession(s.handleViewport))
				r.Post("/changes", s.withSession(s.handleChanges))
				r.Patch("/options", s.withSession(s.handleOptions))
				r.Delete("/", s.handleDeleteSession)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusMethodNotAllowed, errMethod(r))
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
// Expired sessions are swept in the background meanwhile.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, s.cfg.CleanupInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
