// Package server exposes the decoder over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/semaphore"

	"github.com/qrsnap/qrsnap/internal/config"
	"github.com/qrsnap/qrsnap/scan"
)

// Routes served by the decode service.
const (
	EndpointDecode = "/api/v1/decode"
	EndpointHealth = "/health"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// Server is the decode service.
type Server struct {
	cfg     config.Config
	backend scan.Backend
	sem     *semaphore.Weighted
	logger  *log.Logger
	router  *mux.Router
}

// New creates a Server decoding with backend. A nil logger uses log.Default.
func New(cfg config.Config, backend scan.Backend, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:     cfg,
		backend: backend,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentDecodes)),
		logger:  logger,
	}

	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Use(s.withRequestID)
	router.Handle(EndpointDecode, &decodeHandler{srv: s}).Methods(http.MethodPost)
	router.HandleFunc(EndpointHealth, s.health).Methods(http.MethodGet, http.MethodHead)
	s.router = router
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeoutDuration(),
		WriteTimeout: s.cfg.WriteTimeoutDuration(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.cfg.Listen)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withRequestID tags each request with a fresh id and logs its outcome.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.New().String()
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)
		s.logger.Printf("%s %s %s %d %s", id, req.Method, req.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
