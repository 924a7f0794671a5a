// Package http serves the read-only ChainMagnet API: scores, discovery,
// provider health, votes and metrics. Handlers are thin; all logic lives in
// the app service.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/chainmagnet/chainmagnet/internal/app"
	"github.com/chainmagnet/chainmagnet/internal/config"
)

// Server hosts the HTTP API.
type Server struct {
	router  *mux.Router
	server  *http.Server
	service *app.Service
	cfg     config.ServerConfig
}

// NewServer builds the API server around service.
func NewServer(service *app.Service, cfg config.ServerConfig) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		cfg:     cfg,
	}
	s.routes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware, loggingMiddleware)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/score/{token}", s.handleScore).Methods(http.MethodGet)
	v1.HandleFunc("/discovery", s.handleDiscovery).Methods(http.MethodGet)
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/votes/{token}", s.handleCastVote).Methods(http.MethodPost)
	v1.HandleFunc("/votes/{token}", s.handleVoteCount).Methods(http.MethodGet)

	s.router.Handle("/metrics", s.service.Metrics().Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/health", s.handleHealthStream)
	s.router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("http server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("http server shutting down")
		return s.server.Shutdown(shutdownCtx)
	}
}
