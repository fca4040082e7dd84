// Package httpapi exposes the auth server over a REST contract compatible
// with the hosted auth backend the client talks to in production.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/logging"
	"github.com/dmitrijs2005/foodfinder/internal/server/models"
	"github.com/dmitrijs2005/foodfinder/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// UserService is the part of services.UserService the handlers need.
type UserService interface {
	SignUp(ctx context.Context, p services.SignUpParams) (*models.User, *services.TokenPair, error)
	PasswordGrant(ctx context.Context, email string, password []byte) (*models.User, *services.TokenPair, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ParseAccessToken(token string) (string, error)
}

var _ UserService = (*services.UserService)(nil)

type HTTPServer struct {
	address string
	apiKey  string
	users   UserService
	logger  logging.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewHTTPServer(a string, l logging.Logger, us UserService, apiKey string) *HTTPServer {
	return &HTTPServer{
		address: a,
		apiKey:  apiKey,
		users:   us,
		logger:  l.With("module", "http_server"),
		metrics: NewMetrics(),
		now:     time.Now,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
