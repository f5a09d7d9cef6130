// Package httpapi serves the notification inbox over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/models"
)

// NotificationLister returns one page of a user's notifications.
type NotificationLister interface {
	List(ctx context.Context, userID int64, count, page int) ([]models.Notification, error)
}

type Server struct {
	address       string
	router        chi.Router
	notifications NotificationLister
	logger        logging.Logger
	jwtSecret     []byte
}

func NewServer(address string, l logging.Logger, notifications NotificationLister, secretKey string) *Server {
	s := &Server{
		address:       address,
		notifications: notifications,
		logger:        l.With("module", "http_server"),
		jwtSecret:     []byte(secretKey),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/notification", s.handleListNotifications)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
