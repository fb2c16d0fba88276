// Package server provides the HTTP server for the arcade: JSON APIs, the
// rendered MJPEG stream and a WebSocket feed of game snapshots.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/log"
	"github.com/ayusman/handarcade/internal/plugin"
	"github.com/ayusman/handarcade/internal/server/api"
	"github.com/ayusman/handarcade/internal/store"
)

// APITimeout bounds JSON API requests. Streams are not subject to it.
const APITimeout = 15 * time.Second

// Config holds the server configuration. Nil dependencies disable the
// routes that need them.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    api.Controller
	Plugins   *plugin.Manager
	Frames    *FrameHub
	Snapshots *SnapshotHub
	// OnSelect is called after an exercise is selected through the API.
	OnSelect func(game.Exercise)
}

// Server represents the HTTP server for the arcade.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(APITimeout))

			r.Get("/health", s.handleHealth)

			if s.config.Store != nil {
				api.NewScoreHandler(s.config.Store).RegisterRoutes(r)

				var resolver api.PluginResolver
				if s.config.Plugins != nil {
					resolver = s.config.Plugins
				}
				api.NewHookHandler(s.config.Store, resolver).RegisterRoutes(r)
			}
			if s.config.Plugins != nil {
				api.NewPluginHandler(s.config.Plugins).RegisterRoutes(r)
			}
			if s.config.Engine != nil {
				api.NewGameHandler(s.config.Engine, s.config.OnSelect).RegisterRoutes(r)
			}
		})

		if s.config.Frames != nil {
			r.Handle("/stream", NewStreamHandler(s.config.Frames))
		}
		if s.config.Snapshots != nil {
			r.Handle("/ws", s.config.Snapshots)
		}
	})

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Snapshots != nil {
		response["clients"] = s.config.Snapshots.Clients()
	}

	writeJSON(w, http.StatusOK, response)
}

// ListenAndServe starts the HTTP server on the given address and blocks until
// it stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a server started with ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// requestLogger logs each request through the structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
