// Package server exposes health, metrics and status endpoints of the ingestion worker
// and serves cached thumbnails.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/dcwatch/pkg/domain"
	"github.com/umputun/dcwatch/pkg/thumbnail"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/stats.go -pkg mocks -skip-ensure -fmt goimports . Stats
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// Server represents HTTP server instance
type Server struct {
	config        ConfigProvider
	stats         Stats
	scheduler     Scheduler
	thumbnailsDir string
	version       string
	debug         bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Stats provides stored counters for the status endpoint
type Stats interface {
	LastRun(ctx context.Context) (*domain.CycleStats, error)
	CountClips(ctx context.Context) (int, error)
	CountLocations(ctx context.Context) (int, error)
}

// Scheduler reports the state of ingestion cycles
type Scheduler interface {
	Running() bool
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Params for server creation
type Params struct {
	Config        ConfigProvider
	Stats         Stats
	Scheduler     Scheduler
	ThumbnailsDir string // empty disables thumbnail serving
	Version       string
	Debug         bool
}

// New initializes a new server instance
func New(p Params) *Server {
	s := &Server{
		config:        p.Config,
		stats:         p.Stats,
		scheduler:     p.Scheduler,
		thumbnailsDir: p.ThumbnailsDir,
		version:       p.Version,
		debug:         p.Debug,
		router:        routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("dcwatch", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.healthHandler)
	s.router.Handle("GET /metrics", promhttp.Handler())

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
	})

	if s.thumbnailsDir != "" {
		fs := http.StripPrefix(thumbnail.PublicPrefix, http.FileServer(http.Dir(s.thumbnailsDir)))
		s.router.Handle("GET "+thumbnail.PublicPrefix, noListing(fs))
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type lastRunResponse struct {
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	DurationSecs     float64   `json:"duration_secs"`
	Fetched          int       `json:"fetched"`
	Processed        int       `json:"processed"`
	SkippedDuplicate int       `json:"skipped_duplicate"`
	SkippedRelevance int       `json:"skipped_relevance"`
	Errors           int       `json:"errors"`
}

type statusResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Time      time.Time        `json:"time"`
	Running   bool             `json:"running"`
	Clips     int              `json:"clips"`
	Locations int              `json:"locations"`
	LastRun   *lastRunResponse `json:"last_run,omitempty"`
}

// statusHandler returns worker status with the last cycle counters
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := statusResponse{Status: "ok", Version: s.version, Time: time.Now().UTC()}
	if s.scheduler != nil {
		resp.Running = s.scheduler.Running()
	}

	var err error
	if resp.Clips, err = s.stats.CountClips(ctx); err != nil {
		lgr.Printf("[ERROR] failed to count clips: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if resp.Locations, err = s.stats.CountLocations(ctx); err != nil {
		lgr.Printf("[ERROR] failed to count locations: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	last, err := s.stats.LastRun(ctx)
	if err != nil {
		lgr.Printf("[ERROR] failed to get last run: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if last != nil {
		resp.LastRun = &lastRunResponse{
			StartedAt:        last.StartedAt,
			FinishedAt:       last.FinishedAt,
			DurationSecs:     last.Duration().Seconds(),
			Fetched:          last.Fetched,
			Processed:        last.Processed,
			SkippedDuplicate: last.SkippedDuplicate,
			SkippedRelevance: last.SkippedRelevance,
			Errors:           last.Errors,
		}
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// noListing rejects directory requests
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
