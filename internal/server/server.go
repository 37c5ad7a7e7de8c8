// Package server exposes the analysis, blacklist and graph view endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/blacklist"
	"github.com/ziadkadry99/callscope/internal/db"
	"github.com/ziadkadry99/callscope/internal/snapshots"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	AllowAll       bool // allow all CORS origins (dev mode)
	// RequestTimeout bounds each request, analyses included.
	RequestTimeout time.Duration
	Analysis       analyzer.Options
	Limits         snapshots.Limits
}

// Server wires the feature stores onto one chi router.
type Server struct {
	cfg        Config
	db         *db.DB
	blacklist  *blacklist.Store
	snapshots  *snapshots.Store
	analysis   *analyzer.Service
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over database with every route registered.
func New(cfg Config, database *db.DB) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if cfg.Limits == (snapshots.Limits{}) {
		cfg.Limits = snapshots.DefaultLimits()
	}
	s := &Server{
		cfg:       cfg,
		db:        database,
		blacklist: blacklist.NewStore(database),
		snapshots: snapshots.NewStore(database),
	}
	s.analysis = &analyzer.Service{
		Blacklist: s.blacklist,
		Snapshots: s.snapshots,
		Options:   cfg.Analysis,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	corsOpts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{analyzer.SnapshotHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	analyzer.RegisterRoutes(r, s.analysis)
	blacklist.RegisterRoutes(r, s.blacklist)
	snapshots.RegisterRoutes(r, s.snapshots, s.cfg.Limits)

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Snapshots returns the snapshot store.
func (s *Server) Snapshots() *snapshots.Store { return s.snapshots }

// Blacklist returns the blacklist store.
func (s *Server) Blacklist() *blacklist.Store { return s.blacklist }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("callscope server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
