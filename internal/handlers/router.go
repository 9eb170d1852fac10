package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/abdul-hamid-achik/assetvault/internal/config"
	"github.com/abdul-hamid-achik/assetvault/internal/middleware"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

// Dependencies holds all the dependencies needed for handlers. DB and Redis
// may be nil.
type Dependencies struct {
	Config   *config.Config
	Vault    *vault.Vault
	Registry *registry.Registry
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics())
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))
	r.Use(middleware.SecurityHeaders(deps.Config.IsProduction()))
	r.Use(middleware.MaxBodySize(deps.Config.MaxRequestBodySize))

	r.NotFound(NotFoundHandler)
	r.MethodNotAllowed(MethodNotAllowedHandler)

	healthHandler := NewHealthHandler(deps.Vault.Store(), deps.DB, deps.Redis)
	apiHandler := NewAPIHandler(deps.Vault, deps.Registry, deps.Config.MaxRequestBodySize)

	// Health checks and metrics (no auth, no rate limit)
	r.Get("/health", healthHandler.Liveness)
	r.Get("/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Credentials())
		if deps.Redis != nil {
			r.Use(middleware.RateLimit(middleware.NewRateLimiter(
				deps.Redis,
				deps.Config.RateLimit.Requests,
				deps.Config.RateLimit.Window,
			)))
		}

		signed := middleware.RequireCredential()

		r.Route("/vault", func(r chi.Router) {
			r.Get("/", apiHandler.GetLedger)
			r.With(signed).Post("/initialize", apiHandler.Initialize)
			r.With(signed).Post("/withdraw", apiHandler.Withdraw)
		})

		r.With(signed).Post("/locks", apiHandler.CreateLock)
		r.Route("/locks/{depositor}/{asset}", func(r chi.Router) {
			r.Get("/", apiHandler.GetLock)
			r.Get("/quote", apiHandler.QuoteLock)
			r.With(signed).Post("/unlock", apiHandler.Unlock)
		})

		r.Get("/events", apiHandler.ListEvents)

		r.Route("/accounts/{account}", func(r chi.Router) {
			r.Get("/", apiHandler.GetAccount)
			r.Post("/deposit", apiHandler.Deposit)
		})

		r.With(signed).Post("/assets", apiHandler.CreateAsset)
		r.Route("/assets/{id}", func(r chi.Router) {
			r.Get("/", apiHandler.GetAsset)
			r.With(signed).Patch("/", apiHandler.UpdateAsset)
		})
	})

	return r
}
