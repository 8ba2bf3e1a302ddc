package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bufferstock-backend/api/controllers"
	"github.com/angelmondragon/bufferstock-backend/api/middleware"
	"github.com/angelmondragon/bufferstock-backend/internal/auth"
	"github.com/angelmondragon/bufferstock-backend/internal/catalog"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/internal/reports"
	"github.com/angelmondragon/bufferstock-backend/internal/stock"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	catalogService catalog.Service,
	stockService stock.Service,
	ledgerService ledger.Service,
	reportsService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginOperatorLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/parts", controllers.ListParts(catalogService, logg))
		r.Get("/parts/{partCode}", controllers.GetPart(catalogService, logg))
		r.Get("/movements", controllers.ListMovements(ledgerService, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/low-stock", controllers.ReportLowStock(reportsService, logg))
			r.Get("/consumption", controllers.ReportConsumption(reportsService, logg))
			r.Get("/reorder-level/{partCode}", controllers.ReportReorderLevel(reportsService, logg))
			r.Get("/summary", controllers.ReportSummary(reportsService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireWrite(logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/parts", controllers.CreatePart(catalogService, logg))
			r.Post("/stock/in", controllers.StockIn(stockService, logg))
			r.Post("/stock/out", controllers.StockOut(stockService, logg))
			r.Post("/stock/{partCode}/reconcile", controllers.ReconcilePart(stockService, logg))
		})
	})

	return r
}
