package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/infra/http/middleware"
	"github.com/gogo-imperial/gogo-web/internal/infra/metrics"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *zap.Logger

	Leads     *LeadHandler
	Content   *ContentHandler
	Health    *HealthHandler
	AdminAuth *AdminAuthHandler
	Admin     *AdminHandler
	Pages     *PageHandler
	Sessions  middleware.SessionAuthorizer
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	r.Get("/healthz", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/leads", cfg.Leads.Handle)
	r.Get("/pages/*", cfg.Content.GetPage)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth", cfg.AdminAuth.Login)
		r.Delete("/auth", cfg.AdminAuth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.Sessions, logger))

			r.Get("/leads", cfg.Admin.ListLeads)
			r.Get("/audit", cfg.Admin.ListAudit)

			r.Get("/pages", cfg.Pages.List)
			r.Post("/pages", cfg.Pages.Create)
			r.Get("/pages/{id}", cfg.Pages.Get)
			r.Patch("/pages/{id}", cfg.Pages.Update)
			r.Delete("/pages/{id}", cfg.Pages.Delete)
			r.Post("/pages/{id}/publish", cfg.Pages.Publish)
		})
	})

	return r
}
