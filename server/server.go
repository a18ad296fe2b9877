package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedrank/pkg/page"
	"github.com/umputun/feedrank/pkg/pipeline"
	"github.com/umputun/feedrank/pkg/stream"
)

// Server represents HTTP server instance
type Server struct {
	cfg      Config
	ranker   Ranker
	renderer pipeline.Renderer
	shell    *page.Shell
	files    http.Handler

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Config for the server
type Config struct {
	Listen    string
	Timeout   time.Duration
	Throttle  int64  // max concurrent requests, 0 means unlimited
	AssetsDir string // static files, index.html shell comes from here as well
	Version   string
	Debug     bool
}

// Ranker runs the feed pipeline, every call fetches the feed again
type Ranker interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	Source(r pipeline.Renderer) stream.Source
}

// New initializes a new server instance
func New(cfg Config, ranker Ranker, renderer pipeline.Renderer, shell *page.Shell) (*Server, error) {
	files, err := rest.NewFileServer("/", cfg.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("make file server for %s: %w", cfg.AssetsDir, err)
	}

	s := &Server{
		cfg:      cfg,
		ranker:   ranker,
		renderer: renderer,
		shell:    shell,
		files:    files,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] starting server on %s", s.cfg.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.Timeout,
		IdleTimeout:       30 * time.Second,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedrank", "umputun", s.cfg.Version))
	s.router.Use(rest.Ping)

	if s.cfg.Debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(s.cfg.Throttle))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.pageHandler)

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /feed", s.feedHandler)
		r.HandleFunc("GET /status", s.statusHandler)
	})

	// everything else is a static asset, no directory listing
	s.router.Handle("GET /", s.files)
}
