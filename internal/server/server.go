// Package server exposes the mining engine and the run history over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /strategies
//	POST   /mine
//	GET    /runs?dataset=&limit=
//	GET    /runs/{id}
//	GET    /runs/{id}/itemsets
//	GET    /runs/{id}/rules
//	DELETE /runs/{id}
//
// Mining reports are cached in an LRU keyed by the normalized request, so a
// repeated request skips the strategies entirely.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/store"
)

// Config holds the server settings.
type Config struct {
	Addr string
	// CacheSize is the number of cached reports; zero disables the cache.
	CacheSize int
	// Timeout bounds one mining request; zero means no limit.
	Timeout      time.Duration
	Orchestrator *mining.Orchestrator
}

// Server serves the HTTP API. The store may be nil, in which case the
// history routes and persisted mining answer 503.
type Server struct {
	store   *store.Store
	orch    *mining.Orchestrator
	cache   *lru.Cache[string, *mining.Report]
	timeout time.Duration
	addr    string
}

// New creates a server over st.
func New(st *store.Store, cfg Config) (*Server, error) {
	s := &Server{
		store:   st,
		orch:    cfg.Orchestrator,
		timeout: cfg.Timeout,
		addr:    cfg.Addr,
	}
	if s.orch == nil {
		s.orch = mining.DefaultOrchestrator()
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, *mining.Report](cfg.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create report cache")
		}
		s.cache = cache
	}
	return s, nil
}

// Router returns a router with every route registered.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the API routes to r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/strategies", s.ListStrategies).Methods(http.MethodGet)
	r.HandleFunc("/mine", s.PostMine).Methods(http.MethodPost)

	r.HandleFunc("/runs", s.ListRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", s.GetRun).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", s.DeleteRun).Methods(http.MethodDelete)
	r.HandleFunc("/runs/{id}/itemsets", s.GetRunItemsets).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/rules", s.GetRunRules).Methods(http.MethodGet)

	r.Use(logRequests)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("basketmine API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("basketmine API stopped")
	return nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"elapsed": time.Since(start).String(),
		}).Debug("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
