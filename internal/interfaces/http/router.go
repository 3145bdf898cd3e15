package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ipede/auth-hub/internal/application"
	"github.com/ipede/auth-hub/internal/domain"
	"github.com/ipede/auth-hub/internal/infrastructure/config"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/ipede/auth-hub/internal/infrastructure/jwt"
	"github.com/ipede/auth-hub/internal/infrastructure/repository"
	"github.com/ipede/auth-hub/internal/interfaces/http/handlers"
	sessionmw "github.com/ipede/auth-hub/internal/interfaces/http/middleware/session"
	"go.uber.org/zap"
)

type Router struct {
	router *chi.Mux
	db     *database.Postgres
}

func NewRouter(
	db *database.Postgres,
	sessions domain.SessionStore,
	signer *jwt.Signer,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	clientRepo := repository.NewClientRepository(db, logger)
	codeRepo := repository.NewAuthorizationCodeRepository(db, logger)
	tokenRepo := repository.NewTokenSessionRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	authorizeService := application.NewAuthorizeService(clientRepo, codeRepo, cfg.CodeTTL, logger)
	tokenService := application.NewTokenService(codeRepo, tokenRepo, userRepo, signer, cfg.RefreshTokenTTL, logger)
	revocationService := application.NewRevocationService(clientRepo, tokenRepo, logger)
	authService := application.NewAuthService(userRepo, sessions, cfg.SessionTTL, logger)

	sessionMiddleware := sessionmw.NewMiddleware(sessions, logger)

	oauthHandler := handlers.NewOAuthHandler(authorizeService, tokenService, revocationService, logger)
	authHandler := handlers.NewAuthHandler(authService, cfg.CookieSecure, logger)
	oidcHandler := handlers.NewOIDCHandler(signer, cfg.Issuer, logger)
	clientHandler := handlers.NewClientHandler(clientRepo, logger)

	router := createRouter()

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(); err != nil {
				logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Database connection failed"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", authHandler.LoginHandler)
			r.Post("/auth/logout", authHandler.LogoutHandler)
			r.Post("/oauth/token", oauthHandler.TokenHandler)
			r.Post("/oauth/revoke", oauthHandler.RevokeHandler)
			r.Get("/.well-known/openid-configuration", oidcHandler.ConfigurationHandler)
			r.Get("/.well-known/jwks.json", oidcHandler.JWKSHandler)
		})

		// Routes requiring an authenticated hub session
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.RequireSession)
			r.Get("/oauth/authorize", oauthHandler.AuthorizeHandler)
			r.Post("/oauth/authorize", oauthHandler.AuthorizeHandler)

			// Client registry management
			r.Post("/oauth/clients", clientHandler.CreateHandler)
			r.Get("/oauth/clients", clientHandler.ListHandler)
			r.Get("/oauth/clients/{id}", clientHandler.GetHandler)
			r.Delete("/oauth/clients/{id}", clientHandler.DeleteHandler)
		})
	})

	return &Router{router: router, db: db}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
