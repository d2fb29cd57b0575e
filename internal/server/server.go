package server

import (
	"context"
	"net/http"
	"time"

	"github.com/olekhv/contactbook/internal/auth"
	"github.com/olekhv/contactbook/internal/cache"
	"github.com/olekhv/contactbook/internal/config"
	"github.com/olekhv/contactbook/internal/http/handlers"
	"github.com/olekhv/contactbook/internal/imagehost"
	"github.com/olekhv/contactbook/internal/mail"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/storage/postgres"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store *postgres.Store, mailer mail.Mailer, uploader imagehost.Uploader) *Server {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret,
		cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), cfg.VerifyEmailTTL(), cfg.ResetTokenTTL())
	authn := middleware.NewAuthenticator(tokens, store)
	limits := middleware.NewRouteLimits(cfg.RateLimitEnabled)
	listings := cache.NewListings(cfg.CacheEntries, cfg.CacheTTL())

	handlers.NewHealthHandler(store).Register(mux)
	handlers.NewEmailTrackHandler().Register(mux)
	handlers.NewAuthHandler(store, store, tokens, mailer).Register(mux, limits)
	handlers.NewContactsHandler(store, listings).Register(mux, authn, limits)
	handlers.NewUsersHandler(store, uploader).Register(mux, authn, limits)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
