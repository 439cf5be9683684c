package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/flixster/internal/config"
	"github.com/Clark-Hu/flixster/internal/domain"
	"github.com/Clark-Hu/flixster/internal/store"
	"github.com/Clark-Hu/flixster/internal/tmdb"
)

// SnapshotRepository persists the latest listing for detail lookups.
type SnapshotRepository interface {
	ReplaceSnapshot(ctx context.Context, movies []domain.Movie) error
	GetByID(ctx context.Context, id int) (domain.Movie, error)
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	store     *store.Store
	snapshots SnapshotRepository
	catalog   tmdb.Client
	logger    *log.Logger
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes. st and
// snapshots may both be nil when no database is configured.
func New(cfg config.Config, st *store.Store, snapshots SnapshotRepository, catalogClient tmdb.Client, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		snapshots: snapshots,
		catalog:   catalogClient,
		logger:    logger,
		router:    r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListScreen)
		r.Get("/{id}", s.handleDetailScreen)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "snapshot": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Printf("healthz: snapshot store unavailable: %v", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "snapshot": "ok"})
}
