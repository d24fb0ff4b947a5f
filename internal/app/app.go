// Package app wires configuration, storage, the quote gateway and the services
// into one graph shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/api"
	"github.com/ndewijer/portfolio-radar/internal/brapi"
	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/database"
	"github.com/ndewijer/portfolio-radar/internal/gemini"
	"github.com/ndewijer/portfolio-radar/internal/repository"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/valuation"
)

// App is the assembled service graph.
type App struct {
	DB       *sql.DB
	Gateway  *brapi.Client
	Services api.Services
	logger   zerolog.Logger
}

// New opens and migrates the database, builds every service and reloads the
// ledger from storage.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	gateway := NewGateway(cfg, logger)

	ledger := service.NewLedgerService(repository.NewPositionRepository(db), logger)
	refresher := service.NewRefreshService(ledger, gateway, logger,
		service.WithMinInterval(cfg.Refresh.MinInterval),
		service.WithSafetyTimeout(cfg.Refresh.SafetyTimeout),
		service.WithRefreshSymbols(cfg.Quotes.DomesticSuffix, cfg.Quotes.FXSymbol),
	)
	ledger.SetRefreshScheduler(refresher)

	engine := valuation.NewEngine(
		valuation.WithTargetYield(cfg.Valuation.TargetYield),
		valuation.WithRiskFreeRate(cfg.Valuation.RiskFreeRate),
	)

	var narrator service.NarrativeGenerator
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey,
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Narrative insights disabled")
		} else {
			narrator = client
		}
	}

	dividends := service.NewDividendService(repository.NewDividendRepository(db), logger)

	a := &App{
		DB:      db,
		Gateway: gateway,
		logger:  logger,
		Services: api.Services{
			System: service.NewSystemService(db, map[string]bool{
				"scheduled_refresh":  cfg.Refresh.Schedule != "",
				"narrative_insights": narrator != nil,
				"provider_token":     cfg.Quotes.Token != "",
			}),
			Ledger:     ledger,
			Refresh:    refresher,
			Radar:      service.NewRadarService(ledger, engine, gateway, logger),
			Aggregator: service.NewAggregatorService(ledger, dividends),
			Dividends:  dividends,
			Insights:   service.NewInsightService(ledger, narrator, logger),
			Alerts: service.NewAlertService(repository.NewAlertRepository(db), ledger, gateway, logger,
				service.WithAlertSymbols(cfg.Quotes.DomesticSuffix, cfg.Quotes.FXSymbol),
			),
		},
	}

	if err := ledger.Load(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	logger.Info().Int("positions", len(ledger.Positions())).Msg("Ledger loaded")

	return a, nil
}

// NewGateway builds the market-data client from configuration.
func NewGateway(cfg *config.Config, logger zerolog.Logger) *brapi.Client {
	return brapi.NewClient(
		brapi.WithBaseURL(cfg.Quotes.BaseURL),
		brapi.WithToken(cfg.Quotes.Token),
		brapi.WithLogger(logger),
		brapi.WithRateLimit(cfg.Quotes.RateLimit),
		brapi.WithTimeout(cfg.Quotes.Timeout),
		brapi.WithChunkSize(cfg.Quotes.ChunkSize),
		brapi.WithRetry(cfg.Quotes.MaxAttempts, cfg.Quotes.RetryBaseDelay),
		brapi.WithDomesticSuffix(cfg.Quotes.DomesticSuffix),
		brapi.WithFXSymbol(cfg.Quotes.FXSymbol),
		brapi.WithHistoryCache(cfg.Quotes.HistoryCache, cfg.Quotes.HistoryTTL),
	)
}

// Close waits for background refreshes and closes the database.
func (a *App) Close() error {
	a.Services.Refresh.Wait()
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.logger.Debug().Msg("Database closed")
	return nil
}
