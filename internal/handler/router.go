package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/threadline/internal/observability/metrics"
	"github.com/aryan0dhankhar/threadline/internal/security/middleware"
)

// RouterConfig wires handlers into the HTTP surface
type RouterConfig struct {
	Auth                *AuthHandler
	Comments            *CommentHandler
	Health              *HealthHandler
	Authenticator       middleware.Authenticator
	CORSAllowedOrigins  []string
	ProtectCommentReads bool
	Logger              *slog.Logger
}

// NewRouter builds the full route tree: operational endpoints at the root, the API under /api/v1
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	respond := ErrorResponder(log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(metrics.HTTPMetricsMiddleware)

	r.Get("/healthz", cfg.Health.Health)
	r.Get("/readyz", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(cfg.Authenticator, respond)
	readAuth := middleware.OptionalAuth(cfg.Authenticator, respond)
	if cfg.ProtectCommentReads {
		readAuth = requireAuth
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ValidateJSONContentType(log))

		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/auth/logout", cfg.Auth.Logout)
			r.Get("/user/me", cfg.Auth.Me)
			r.Post("/comments", cfg.Comments.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(readAuth)
			r.Get("/comments", cfg.Comments.List)
			r.Get("/comments/{id}", cfg.Comments.Get)
		})
	})

	return r
}
