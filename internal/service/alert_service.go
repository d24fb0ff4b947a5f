package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/brapi"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/repository"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// AlertService manages price alerts. Held tickers are evaluated against ledger
// prices; watchlist tickers are quoted through the gateway.
type AlertService struct {
	alertRepo *repository.AlertRepository
	ledger    *LedgerService
	gateway   QuoteGateway
	logger    zerolog.Logger

	suffix   string
	fxSymbol string
}

// AlertOption configures an AlertService.
type AlertOption func(*AlertService)

// WithAlertSymbols sets the domestic market suffix and the currency pair used
// to convert foreign watchlist quotes.
func WithAlertSymbols(domesticSuffix, fxSymbol string) AlertOption {
	return func(s *AlertService) {
		s.suffix = domesticSuffix
		if fxSymbol != "" {
			s.fxSymbol = fxSymbol
		}
	}
}

// NewAlertService creates an AlertService. A nil gateway limits evaluation to
// held tickers.
func NewAlertService(alertRepo *repository.AlertRepository, ledger *LedgerService, gateway QuoteGateway, logger zerolog.Logger, opts ...AlertOption) *AlertService {
	s := &AlertService{
		alertRepo: alertRepo,
		ledger:    ledger,
		gateway:   gateway,
		logger:    logger.With().Str("component", "alerts").Logger(),
		suffix:    brapi.DefaultSuffix,
		fxSymbol:  brapi.DefaultFXSymbol,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every alert.
func (s *AlertService) List(ctx context.Context) ([]model.Alert, error) {
	alerts, err := s.alertRepo.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAlerts, err)
	}
	return alerts, nil
}

// Get returns one alert.
func (s *AlertService) Get(ctx context.Context, id string) (model.Alert, error) {
	a, err := s.alertRepo.GetAlert(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, fmt.Errorf("%w: %s", apperrors.ErrAlertNotFound, id)
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAlerts, err)
	}
	return a, nil
}

// Create validates and stores a new alert. The ticker does not need to be held.
func (s *AlertService) Create(ctx context.Context, ticker string, target float64, kind string) (model.Alert, error) {
	a, err := validation.ParseAlert(ticker, target, kind)
	if err != nil {
		return model.Alert{}, err
	}
	a.ID = uuid.New().String()

	if err := s.alertRepo.InsertAlert(ctx, a); err != nil {
		return model.Alert{}, fmt.Errorf("failed to create alert: %w", err)
	}

	s.logger.Debug().Str("ticker", a.Ticker).Float64("target", a.Target).Str("kind", string(a.Kind)).Msg("Alert created")
	return a, nil
}

// Delete removes one alert.
func (s *AlertService) Delete(ctx context.Context, id string) error {
	deleted, err := s.alertRepo.DeleteAlert(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", apperrors.ErrAlertNotFound, id)
	}
	return nil
}

// Evaluate reports how close each alert is to its target. Held tickers use the
// ledger's current price. Other tickers are quoted through the gateway, with
// foreign prices converted by the exchange rate; a ticker without a quote, or
// a foreign one without an exchange rate, has no price and zero progress.
func (s *AlertService) Evaluate(ctx context.Context) ([]model.AlertStatus, error) {
	alerts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64)
	for _, p := range s.ledger.Positions() {
		prices[p.Ticker] = p.CurrentPrice
	}
	s.quoteWatchlist(ctx, alerts, prices)

	out := make([]model.AlertStatus, 0, len(alerts))
	for _, a := range alerts {
		status := model.AlertStatus{Alert: a}
		if price, ok := prices[a.Ticker]; ok && price > 0 {
			status.CurrentPrice = &price
			status.Progress = AlertProgress(a, price)
			status.Triggered = status.Progress >= 100
		}
		out = append(out, status)
	}
	return out, nil
}

// quoteWatchlist adds prices for alert tickers that are not held.
func (s *AlertService) quoteWatchlist(ctx context.Context, alerts []model.Alert, prices map[string]float64) {
	if s.gateway == nil {
		return
	}

	var tickers []string
	seen := make(map[string]bool)
	needsFX := false
	for _, a := range alerts {
		if _, held := prices[a.Ticker]; held || seen[a.Ticker] {
			continue
		}
		seen[a.Ticker] = true
		tickers = append(tickers, a.Ticker)
		if brapi.ClassifySymbol(a.Ticker, s.suffix) == brapi.Foreign {
			needsFX = true
		}
	}
	if len(tickers) == 0 {
		return
	}
	if needsFX {
		tickers = append(tickers, s.fxSymbol)
	}

	quotes := s.gateway.FetchQuotes(ctx, tickers)

	var fxRate float64
	if needsFX {
		if fx, ok := lookupQuote(quotes, s.fxSymbol, s.suffix); ok && fx.Price > 0 {
			fxRate = fx.Price
		} else {
			s.logger.Warn().Str("symbol", s.fxSymbol).Msg("Exchange rate missing, foreign alerts have no price")
		}
	}

	for ticker := range seen {
		q, ok := lookupQuote(quotes, ticker, s.suffix)
		if !ok || q.Price <= 0 {
			continue
		}
		if brapi.ClassifySymbol(ticker, s.suffix) == brapi.Foreign {
			if fxRate == 0 {
				continue
			}
			prices[ticker] = q.Price * fxRate
			continue
		}
		prices[ticker] = q.Price
	}
}

// AlertProgress returns 0 to 100. A buy alert completes once the price falls to
// the target, a sell alert once it rises to it.
func AlertProgress(a model.Alert, price float64) float64 {
	if price <= 0 || a.Target <= 0 {
		return 0
	}

	var progress float64
	switch a.Kind {
	case model.AlertBuy:
		if price <= a.Target {
			return 100
		}
		progress = a.Target / price * 100
	case model.AlertSell:
		if price >= a.Target {
			return 100
		}
		progress = price / a.Target * 100
	default:
		return 0
	}
	return math.Max(0, math.Min(100, progress))
}
