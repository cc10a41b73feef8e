// Package core provides the API chassis for the AgriKlima backend.
// It creates a chi router and enforces cross-cutting concerns -- security,
// logging, and error handling -- before requests reach domain-specific
// handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agriklima/internal/config"
	"agriklima/internal/types"
)

// Authenticator resolves a bearer token to an Actor. Implemented by the
// auth package's token service; injected as an interface for testability.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (types.Actor, error)
}

// Server encapsulates all dependencies for the AgriKlima API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config        *config.Config
	Logger        *slog.Logger
	Validator     *Validator
	Authenticator Authenticator

	// V1RouteRegistrars are invoked by MountRoutes to register domain
	// handler routes under /v1. Populated by the application entry point;
	// this indirection avoids import cycles between core and handlers.
	V1RouteRegistrars []func(chi.Router)

	// HealthProbes are executed by the /health endpoint.
	HealthProbes []HealthProbe

	router *chi.Mux

	// closers are invoked during Shutdown, in registration order.
	closers []func(context.Context) error
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a fail-fast check on critical
// dependencies.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize route
// registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers a cleanup function (e.g., closing the database pool
// or the Redis client) to run during Shutdown.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Shutdown performs a graceful termination of server resources, running all
// registered cleanup functions. The first failure is returned but later
// cleanups still run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	var firstErr error
	for _, fn := range s.closers {
		if err := fn(ctx); err != nil {
			s.Logger.Error("shutdown cleanup failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.Logger.Info("server shutdown complete")
	return firstErr
}
