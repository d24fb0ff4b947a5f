package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/valuation"
)

// ProjectionHistoryRange is the history window shown next to a projection.
const ProjectionHistoryRange = "3mo"

// RadarService runs the valuation engine over the current ledger.
type RadarService struct {
	ledger  *LedgerService
	engine  *valuation.Engine
	gateway QuoteGateway
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRadarService creates a RadarService.
func NewRadarService(ledger *LedgerService, engine *valuation.Engine, gateway QuoteGateway, logger zerolog.Logger) *RadarService {
	return &RadarService{
		ledger:  ledger,
		engine:  engine,
		gateway: gateway,
		logger:  logger.With().Str("component", "radar").Logger(),
		now:     time.Now,
	}
}

// Rank returns one recommendation per position, best margin of safety first.
func (s *RadarService) Rank() []model.Recommendation {
	return s.engine.Rank(s.ledger.Positions())
}

// Evaluate returns the recommendation for one position.
func (s *RadarService) Evaluate(ticker string) (model.Recommendation, error) {
	p, err := s.ledger.Position(ticker)
	if err != nil {
		return model.Recommendation{}, err
	}
	return s.engine.Evaluate(p), nil
}

// Projection returns the 90-day projection of a position together with its
// recent price history. A history failure does not fail the projection; the
// reason is reported in HistoryError instead.
func (s *RadarService) Projection(ctx context.Context, ticker string) (model.Projection, error) {
	p, err := s.ledger.Position(ticker)
	if err != nil {
		return model.Projection{}, err
	}

	proj := s.engine.Project(p, valuation.FairValue(p), s.now())

	history, err := s.gateway.FetchHistory(ctx, p.Ticker, ProjectionHistoryRange)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", p.Ticker).Msg("Price history unavailable for projection")
		proj.History = []model.PricePoint{}
		proj.HistoryError = err.Error()
		return proj, nil
	}
	proj.History = history
	return proj, nil
}
