package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/brapi"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

// QuoteGateway is the market-data port. *brapi.Client implements it.
type QuoteGateway interface {
	FetchQuotes(ctx context.Context, tickers []string) map[string]model.Quote
	FetchHistory(ctx context.Context, ticker, rangeSpec string) ([]model.PricePoint, error)
}

const (
	DefaultRefreshMinInterval   = 10 * time.Second
	DefaultRefreshSafetyTimeout = 30 * time.Second
)

// RefreshService keeps ledger prices current. At most one refresh runs at a
// time; requests arriving while one is in flight, or within the minimum
// interval after the last successful run, are dropped rather than queued.
//
// Each run takes a new generation number. A safety timer returns the service to
// idle if a run hangs, without cancelling its network call; when that call
// eventually returns its results are discarded if a newer run has started.
type RefreshService struct {
	ledger  *LedgerService
	gateway QuoteGateway
	logger  zerolog.Logger

	minInterval   time.Duration
	safetyTimeout time.Duration
	suffix        string
	fxSymbol      string
	now           func() time.Time

	mu            sync.Mutex
	running       bool
	generation    uint64
	timer         *time.Timer
	lastRefreshAt time.Time
	lastSuccessAt time.Time

	async sync.WaitGroup
}

// RefreshOption configures a RefreshService.
type RefreshOption func(*RefreshService)

// WithMinInterval sets the debounce window measured from the last successful run.
func WithMinInterval(d time.Duration) RefreshOption {
	return func(s *RefreshService) {
		s.minInterval = d
	}
}

// WithSafetyTimeout sets how long a run may take before the service resets to idle.
func WithSafetyTimeout(d time.Duration) RefreshOption {
	return func(s *RefreshService) {
		if d > 0 {
			s.safetyTimeout = d
		}
	}
}

// WithRefreshSymbols sets the domestic market suffix used to match echoed
// symbols and the currency pair quoted for foreign positions.
func WithRefreshSymbols(domesticSuffix, fxSymbol string) RefreshOption {
	return func(s *RefreshService) {
		s.suffix = domesticSuffix
		if fxSymbol != "" {
			s.fxSymbol = fxSymbol
		}
	}
}

// WithRefreshClock replaces time.Now, for tests.
func WithRefreshClock(now func() time.Time) RefreshOption {
	return func(s *RefreshService) {
		s.now = now
	}
}

// NewRefreshService creates an idle orchestrator.
func NewRefreshService(ledger *LedgerService, gateway QuoteGateway, logger zerolog.Logger, opts ...RefreshOption) *RefreshService {
	s := &RefreshService{
		ledger:        ledger,
		gateway:       gateway,
		logger:        logger.With().Str("component", "refresh").Logger(),
		minInterval:   DefaultRefreshMinInterval,
		safetyTimeout: DefaultRefreshSafetyTimeout,
		suffix:        brapi.DefaultSuffix,
		fxSymbol:      brapi.DefaultFXSymbol,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches quotes for every position and merges them into the ledger.
// It blocks until the run finishes or is dropped.
func (s *RefreshService) Refresh(ctx context.Context, trigger string) model.RefreshResult {
	start := s.now()
	result := model.RefreshResult{
		Trigger: trigger,
		Updated: []string{},
		Missing: []string{},
	}

	s.mu.Lock()
	if s.running {
		result.Outcome = model.RefreshSkippedBusy
		result.Generation = s.generation
		s.mu.Unlock()
		s.logger.Debug().Str("trigger", trigger).Msg("Refresh already running, request dropped")
		return result
	}
	if !s.lastSuccessAt.IsZero() && start.Sub(s.lastSuccessAt) < s.minInterval {
		result.Outcome = model.RefreshSkippedDebounce
		result.Generation = s.generation
		s.mu.Unlock()
		s.logger.Debug().Str("trigger", trigger).Msg("Refresh debounced")
		return result
	}

	s.running = true
	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.safetyTimeout, func() { s.expire(gen) })
	s.mu.Unlock()

	result.Generation = gen
	log := s.logger.With().Uint64("refresh_id", gen).Str("trigger", trigger).Logger()
	log.Debug().Msg("Refresh started")

	s.run(ctx, gen, &result)
	result.Duration = s.now().Sub(start)

	s.finish(gen, result.Outcome)

	event := log.Info()
	if result.Outcome != model.RefreshCompleted {
		event = log.Warn()
	}
	event.
		Str("outcome", string(result.Outcome)).
		Int("updated", len(result.Updated)).
		Strs("missing", result.Missing).
		Dur("duration", result.Duration).
		Msg("Refresh finished")

	return result
}

// RefreshAsync starts a refresh in the background.
func (s *RefreshService) RefreshAsync(trigger string) {
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		s.Refresh(context.Background(), trigger)
	}()
}

// Wait blocks until every refresh started by RefreshAsync has returned.
func (s *RefreshService) Wait() {
	s.async.Wait()
}

// Status reports whether a refresh is in flight and when the last ones ended.
func (s *RefreshService) Status() model.RefreshStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := model.RefreshStatus{
		Loading:    s.running,
		Generation: s.generation,
	}
	if !s.lastRefreshAt.IsZero() {
		t := s.lastRefreshAt
		status.LastRefreshAt = &t
	}
	if !s.lastSuccessAt.IsZero() {
		t := s.lastSuccessAt
		status.LastSuccessAt = &t
	}
	return status
}

func (s *RefreshService) run(ctx context.Context, gen uint64, result *model.RefreshResult) {
	positions := s.ledger.Positions()
	if len(positions) == 0 {
		result.Outcome = model.RefreshCompleted
		return
	}

	tickers := make([]string, 0, len(positions)+1)
	needsFX := false
	for _, p := range positions {
		tickers = append(tickers, p.Ticker)
		if p.AssetClass.IsForeignCurrency() {
			needsFX = true
		}
	}
	if needsFX {
		tickers = append(tickers, s.fxSymbol)
	}

	quotes := s.gateway.FetchQuotes(ctx, tickers)
	if len(quotes) == 0 {
		result.Outcome = model.RefreshFailed
		result.Error = "no quotes received"
		for _, p := range positions {
			result.Missing = append(result.Missing, p.Ticker)
		}
		return
	}

	var fxRate float64
	if needsFX {
		if fx, ok := s.lookup(quotes, s.fxSymbol); ok && fx.Price > 0 {
			fxRate = fx.Price
		} else {
			s.logger.Warn().Str("symbol", s.fxSymbol).Msg("Exchange rate missing, foreign positions keep their last price")
		}
	}

	commit := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.generation == gen
	}

	merged := s.ledger.ApplyQuotes(ctx, commit, func(p *model.Position) bool {
		q, ok := s.lookup(quotes, p.Ticker)
		if !ok {
			result.Missing = append(result.Missing, p.Ticker)
			return false
		}

		if p.AssetClass.IsForeignCurrency() {
			if fxRate == 0 {
				result.Missing = append(result.Missing, p.Ticker)
				return false
			}
			rate := fxRate
			p.CurrentPriceOriginalCurrency = q.Price
			p.CurrentPrice = q.Price * rate
			p.FXRateApplied = &rate
		} else {
			p.CurrentPriceOriginalCurrency = q.Price
			p.CurrentPrice = q.Price
			p.FXRateApplied = nil
		}

		change := q.ChangePercent
		p.ChangePercent = &change

		// A quote without a ratio keeps the previously known one.
		if q.PriceEarnings != nil {
			p.PriceEarnings = q.PriceEarnings
		}
		if q.PriceToBook != nil {
			p.PriceToBook = q.PriceToBook
		}
		if q.DividendYield != nil {
			p.DividendYield = q.DividendYield
		}
		if q.ReturnOnEquity != nil {
			p.ReturnOnEquity = q.ReturnOnEquity
		}

		asOf := q.AsOf
		p.LastQuoteAt = &asOf

		result.Updated = append(result.Updated, p.Ticker)
		return true
	})

	if !merged {
		result.Outcome = model.RefreshDiscardedStale
		result.Updated = []string{}
		result.Missing = []string{}
		return
	}
	result.Outcome = model.RefreshCompleted
}

// lookup finds the quote for a ticker under any of the forms the provider may
// have echoed it back as.
func (s *RefreshService) lookup(quotes map[string]model.Quote, ticker string) (model.Quote, bool) {
	return lookupQuote(quotes, ticker, s.suffix)
}

func lookupQuote(quotes map[string]model.Quote, ticker, suffix string) (model.Quote, bool) {
	for _, symbol := range brapi.SymbolVariants(ticker, suffix) {
		if q, ok := quotes[symbol]; ok {
			return q, true
		}
	}
	return model.Quote{}, false
}

// finish returns the service to idle unless the safety timer already did and
// a newer run has taken over.
func (s *RefreshService) finish(gen uint64, outcome model.RefreshOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.running = false

	now := s.now()
	s.lastRefreshAt = now
	if outcome == model.RefreshCompleted {
		s.lastSuccessAt = now
	}
}

// expire is the safety timer callback.
func (s *RefreshService) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.generation != gen {
		return
	}
	s.running = false
	s.timer = nil
	s.lastRefreshAt = s.now()
	s.logger.Warn().
		Uint64("refresh_id", gen).
		Dur("timeout", s.safetyTimeout).
		Msg("Refresh timed out, state reset to idle")
}
