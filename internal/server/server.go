package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

// Authorizer runs the hh.ru OAuth consent flow
type Authorizer interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (*domain.Credential, error)
}

// Poller triggers a poll cycle
type Poller interface {
	PollAndNotify(ctx context.Context) (responses.Report, error)
}

// ReactionApplier rewrites message status on chat reactions
type ReactionApplier interface {
	ApplyReaction(ctx context.Context, messageID int64, code string) error
}

// Server exposes the OAuth, manual poll and webhook routes
type Server struct {
	logger *logging.Logger
	config config.Config

	auth      Authorizer
	poller    Poller
	reactions ReactionApplier

	srv     *http.Server
	started atomic.Bool
}

// NewServer constructs the HTTP server
func NewServer(log *logging.Logger, cfg config.Config, auth Authorizer, poller Poller, reactions ReactionApplier) *Server {
	s := &Server{
		logger:    log,
		config:    cfg,
		auth:      auth,
		poller:    poller,
		reactions: reactions,
	}

	s.srv = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	r.Get("/auth", s.handleAuth)
	r.Get("/callback", s.handleCallback)
	r.Get("/responses", s.handleResponses)

	r.Group(func(r chi.Router) {
		r.Use(verifySignature(s.config.Pachca.WebhookSecret, s.logger))
		r.Post("/reaction", s.handleReaction)
	})

	return r
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
