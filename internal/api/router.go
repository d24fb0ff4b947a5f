package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-radar/internal/api/middleware"
	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// Services bundles everything the HTTP layer delegates to.
type Services struct {
	System     *service.SystemService
	Ledger     *service.LedgerService
	Refresh    *service.RefreshService
	Radar      *service.RadarService
	Aggregator *service.AggregatorService
	Dividends  *service.DividendService
	Insights   *service.InsightService
	Alerts     *service.AlertService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svc.System)
	positionHandler := handlers.NewPositionHandler(svc.Ledger)
	dividendHandler := handlers.NewDividendHandler(svc.Dividends)
	refreshHandler := handlers.NewRefreshHandler(svc.Refresh)
	radarHandler := handlers.NewRadarHandler(svc.Radar)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Aggregator)
	insightHandler := handlers.NewInsightHandler(svc.Insights)
	alertHandler := handlers.NewAlertHandler(svc.Alerts)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", positionHandler.Positions)
			r.Route("/{ticker}", func(r chi.Router) {
				r.Get("/", positionHandler.Position)
				r.Post("/transactions", positionHandler.AddTransaction)
				r.With(custommiddleware.ValidateIDMiddleware).
					Delete("/transactions/{id}", positionHandler.RemoveTransaction)
			})
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/transactions", positionHandler.ImportTransactions)
			r.Post("/dividends", dividendHandler.ImportDividends)
		})

		r.Route("/dividends", func(r chi.Router) {
			r.Get("/", dividendHandler.Dividends)
			r.Delete("/", dividendHandler.ResetDividends)
			r.With(custommiddleware.ValidateIDMiddleware).Delete("/{id}", dividendHandler.DeleteDividend)
		})

		r.Route("/refresh", func(r chi.Router) {
			r.Post("/", refreshHandler.Refresh)
			r.Get("/status", refreshHandler.Status)
		})

		r.Route("/radar", func(r chi.Router) {
			r.Get("/", radarHandler.Radar)
			r.Get("/{ticker}/projection", radarHandler.Projection)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/evolution", portfolioHandler.Evolution)
		})

		r.Get("/insights", insightHandler.Insights)

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.Alerts)
			r.Post("/", alertHandler.CreateAlert)
			r.Get("/evaluate", alertHandler.Evaluate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDMiddleware)
				r.Get("/", alertHandler.Alert)
				r.Delete("/", alertHandler.DeleteAlert)
			})
		})
	})

	return r
}
