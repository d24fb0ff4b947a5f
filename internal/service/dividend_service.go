package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/repository"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// DividendService handles dividend-related business logic operations.
type DividendService struct {
	dividendRepo *repository.DividendRepository
	logger       zerolog.Logger
}

// NewDividendService creates a new DividendService with the provided repository dependencies.
func NewDividendService(dividendRepo *repository.DividendRepository, logger zerolog.Logger) *DividendService {
	return &DividendService{
		dividendRepo: dividendRepo,
		logger:       logger.With().Str("component", "dividends").Logger(),
	}
}

// List returns dividends ordered by payment date, optionally for one ticker.
func (s *DividendService) List(ctx context.Context, ticker string) ([]model.Dividend, error) {
	dividends, err := s.dividendRepo.GetDividends(ctx, normalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveDividends, err)
	}
	return dividends, nil
}

// BatchImport validates every row, stores the valid ones in one database
// transaction and reports the invalid ones. Rows are appended; importing the
// same file twice stores its dividends twice.
func (s *DividendService) BatchImport(ctx context.Context, rows []model.DividendImportRow) (model.ImportResult, error) {
	result := model.ImportResult{
		Tickers: []string{},
		Errors:  []model.ImportRowError{},
	}

	valid := make([]model.Dividend, 0, len(rows))
	tickers := make(map[string]bool)
	for i, row := range rows {
		d, err := validation.ParseDividendRow(row)
		if err != nil {
			result.Errors = append(result.Errors, model.ImportRowError{
				Row:    i + 1,
				Ticker: strings.ToUpper(strings.TrimSpace(row.Ticker)),
				Error:  err.Error(),
			})
			continue
		}
		d.ID = uuid.New().String()
		valid = append(valid, d)
		tickers[d.Ticker] = true
	}

	if err := s.dividendRepo.InsertDividends(ctx, valid); err != nil {
		return model.ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportDividends, err)
	}

	result.Accepted = len(valid)
	for t := range tickers {
		result.Tickers = append(result.Tickers, t)
	}
	sort.Strings(result.Tickers)

	s.logger.Info().
		Int("rows", len(rows)).
		Int("accepted", result.Accepted).
		Int("rejected", len(result.Errors)).
		Msg("Dividends imported")
	return result, nil
}

// Delete removes one dividend.
func (s *DividendService) Delete(ctx context.Context, id string) error {
	deleted, err := s.dividendRepo.DeleteDividend(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", apperrors.ErrDividendNotFound, id)
	}
	return nil
}

// Reset removes every dividend.
func (s *DividendService) Reset(ctx context.Context) error {
	return s.dividendRepo.DeleteAllDividends(ctx)
}

// NetByTicker sums net amounts per ticker.
func (s *DividendService) NetByTicker(ctx context.Context) (map[string]decimal.Decimal, error) {
	dividends, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, d := range dividends {
		totals[d.Ticker] = totals[d.Ticker].Add(d.NetAmount)
	}
	return totals, nil
}
