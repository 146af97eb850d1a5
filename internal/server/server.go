// Package server exposes the word cloud pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                   liveness probe
//	GET  /v1/version                build information
//	POST /v1/layout                 compute a layout, returns its id
//	GET  /v1/layouts/{id}           fetch a stored layout
//	GET  /v1/layouts/{id}/{format}  render a stored layout
//	POST /v1/render?format=svg      compute and render in one call
//
// Request bodies are JSON-encoded [pipeline.Options] with inline words.
// Requests carrying an X-Tenant header get their own cache key space.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

const (
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 8 << 20

	// ShutdownTimeout bounds graceful shutdown once the context is done.
	ShutdownTimeout = 10 * time.Second

	headerRequestID = "X-Request-ID"
	headerTenant    = "X-Tenant"
	headerCache     = "X-Cache"
)

// Server routes HTTP requests to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner. The runner's cache also stores
// layouts by id, so a [cache.NullCache] makes GET /v1/layouts/{id} useless.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(limitBody(MaxBodyBytes))

	r.Get("/healthz", s.handle(s.health))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.handle(s.version))
		r.Post("/layout", s.handle(s.createLayout))
		r.Get("/layouts/{id}", s.handle(s.getLayout))
		r.Get("/layouts/{id}/{format}", s.handle(s.renderLayout))
		r.Post("/render", s.handle(s.render))
	})
	r.NotFound(s.handle(notFound))
	r.MethodNotAllowed(methodNotAllowed)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		MaxHeaderBytes:    1 << 18,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      pipeline.DefaultTimeout + time.Minute,
		IdleTimeout:       time.Hour,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(l)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ListenAndServe listens on addr and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "addr", l.Addr().String())
	return s.Serve(ctx, l)
}
