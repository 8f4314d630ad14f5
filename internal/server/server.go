// Package server implements the photonlayout HTTP API.
//
// Designs are stored by name and built on request:
//
//	GET    /healthz
//	GET    /v1/designs                      list stored designs
//	PUT    /v1/designs/{name}               validate (build) and store a document
//	GET    /v1/designs/{name}               fetch a stored document
//	DELETE /v1/designs/{name}
//	GET    /v1/designs/{name}/layout        flattened layout export
//	GET    /v1/designs/{name}/hierarchy     hierarchy diagram (?format=dot|svg)
//	POST   /v1/build                        build an unsaved document
//
// Layout and hierarchy responses carry an ETag over the document, the
// session config, the artifact and its query options; a request with a
// matching If-None-Match gets 304 Not Modified.
//
// Errors are JSON objects {"code": ..., "error": ...} with the status
// derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/pipeline"
	"github.com/matzehuels/photonlayout/pkg/store"
)

// Server serves the API.
type Server struct {
	cfg    config.Server
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// New builds a server over an explicit store and pipeline runner.
func New(cfg config.Server, st store.Store, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{cfg: cfg, store: st, runner: runner, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Open builds a server from the environment configuration: MongoDB when a
// URI is set (else a directory store) and Redis for the cache when a URL is
// set (else no cache).
func Open(ctx context.Context, cfg config.Server, logger *log.Logger) (*Server, error) {
	sessionCfg, err := cfg.Session()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if cfg.MongoURI != "" {
		st, err = store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	} else {
		st, err = store.NewFileStore(cfg.StoreDir)
	}
	if err != nil {
		return nil, err
	}

	c := cache.NewNullCache()
	if cfg.RedisURL != "" {
		if c, err = cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, Prefix: "photonlayout"}); err != nil {
			st.Close()
			return nil, err
		}
	}

	logger.Info("backends ready", "store", storeKind(cfg), "cache", cacheKind(cfg))
	return New(cfg, st, pipeline.NewRunner(sessionCfg, c, nil, logger), WithLogger(logger)), nil
}

func storeKind(cfg config.Server) string {
	if cfg.MongoURI != "" {
		return "mongo"
	}
	return "file:" + cfg.StoreDir
}

func cacheKind(cfg config.Server) string {
	if cfg.RedisURL != "" {
		return "redis"
	}
	return "none"
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/build", s.handleBuild)
		r.Route("/designs", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Route("/{name}", func(r chi.Router) {
				r.Put("/", s.handlePut)
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Get("/layout", s.handleLayout)
				r.Get("/hierarchy", s.handleHierarchy)
			})
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down within
// the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close releases the store and the cache.
func (s *Server) Close() error {
	err := s.store.Close()
	if cerr := s.runner.Close(); err == nil {
		err = cerr
	}
	return err
}
