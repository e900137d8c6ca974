package api

import (
	"campus_auth/internal/api/handler"
	"campus_auth/internal/api/middleware"
	"campus_auth/internal/app/service"
	"campus_auth/internal/common/security"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins          []string
	LoginRateLimitPerMinute int
}

func NewRouter(
	accountService *service.AccountService,
	tokens *security.TokenIssuer,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	accountHandler := handler.NewAccountHandler(accountService, logger)

	// Credential routes (public, rate limited per IP)
	r.Group(func(public chi.Router) {
		public.Use(middleware.RateLimit(cfg.LoginRateLimitPerMinute))
		accountHandler.RegisterRoutes(public)
	})

	// Account listings (bearer token required)
	r.Group(func(protected chi.Router) {
		protected.Use(jwtauth.Verifier(tokens.JWTAuth()))
		protected.Use(middleware.Authenticator)
		accountHandler.RegisterListRoutes(protected)
	})

	return r
}
