package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// LedgerStore is the persistence port of the ledger. The SQLite
// PositionRepository implements it.
type LedgerStore interface {
	LoadPositions(ctx context.Context) ([]model.Position, error)
	SavePosition(ctx context.Context, p model.Position) error
	DeletePosition(ctx context.Context, ticker string) error
	DeleteAllPositions(ctx context.Context) error
}

// RefreshScheduler starts a price refresh without waiting for it.
type RefreshScheduler interface {
	RefreshAsync(trigger string)
}

// LedgerService owns the positions and their transaction histories.
// Every mutation is validated, recomputed from the full transaction list and
// written through to the store before it becomes visible in memory.
type LedgerService struct {
	mu        sync.RWMutex
	positions map[string]*model.Position

	store     LedgerStore
	refresher RefreshScheduler
	logger    zerolog.Logger
	newID     func() string
}

// NewLedgerService creates an empty ledger. Call Load to restore persisted positions.
// A nil store keeps the ledger in memory only.
func NewLedgerService(store LedgerStore, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		positions: make(map[string]*model.Position),
		store:     store,
		logger:    logger.With().Str("component", "ledger").Logger(),
		newID:     func() string { return uuid.New().String() },
	}
}

// SetRefreshScheduler wires the orchestrator that BatchImport notifies.
// It is set after construction because the orchestrator itself depends on the ledger.
func (s *LedgerService) SetRefreshScheduler(r RefreshScheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// Load replaces the in-memory state with the persisted positions.
// Derived fields are recomputed; persisted quotes are kept.
func (s *LedgerService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	loaded, err := s.store.LoadPositions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePositions, err)
	}

	positions := make(map[string]*model.Position, len(loaded))
	for i := range loaded {
		p := loaded[i]
		p.Recompute()
		if p.Empty() {
			s.logger.Warn().Str("ticker", p.Ticker).Msg("Skipping persisted position without holdings")
			continue
		}
		positions[p.Ticker] = &p
	}

	s.mu.Lock()
	s.positions = positions
	s.mu.Unlock()

	s.logger.Info().Int("positions", len(positions)).Msg("Ledger loaded")
	return nil
}

// AddTransaction appends a transaction to the ticker's position, creating the
// position when absent. The returned transaction carries its new ID.
//
// An existing position keeps its asset class. A SELL larger than the held
// quantity is rejected; a SELL of the whole holding removes the position.
func (s *LedgerService) AddTransaction(ctx context.Context, ticker string, class model.AssetClass, in model.TransactionInput) (model.Transaction, error) {
	ticker = normalizeTicker(ticker)
	if err := validation.ValidateTransactionInput(ticker, class, in); err != nil {
		return model.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.working(ticker, class)
	tx, err := s.appendTransaction(&next, in)
	if err != nil {
		return model.Transaction{}, err
	}

	if err := s.commit(ctx, next); err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAddTransaction, err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Str("type", string(tx.Type)).
		Str("quantity", tx.Quantity.String()).
		Str("price", tx.Price.String()).
		Msg("Transaction added")
	return tx, nil
}

// BatchImport applies every valid row in one state transition and reports the
// invalid ones. It never fails as a whole. When at least one row was accepted an
// asynchronous price refresh is scheduled; the import does not wait for it.
func (s *LedgerService) BatchImport(ctx context.Context, rows []model.ImportRow) model.ImportResult {
	result := model.ImportResult{
		Tickers: []string{},
		Errors:  []model.ImportRowError{},
	}

	s.mu.Lock()

	working := make(map[string]*model.Position)
	rowsByTicker := make(map[string][]int)

	for i, row := range rows {
		rowNum := i + 1
		parsed, err := validation.ParseImportRow(row)
		if err != nil {
			result.Errors = append(result.Errors, model.ImportRowError{
				Row:    rowNum,
				Ticker: strings.ToUpper(strings.TrimSpace(row.Ticker)),
				Error:  err.Error(),
			})
			continue
		}

		p, ok := working[parsed.Ticker]
		if !ok {
			next := s.working(parsed.Ticker, parsed.AssetClass)
			p = &next
			working[parsed.Ticker] = p
		}

		if _, err := s.appendTransaction(p, parsed.Input); err != nil {
			result.Errors = append(result.Errors, model.ImportRowError{Row: rowNum, Ticker: parsed.Ticker, Error: err.Error()})
			continue
		}
		rowsByTicker[parsed.Ticker] = append(rowsByTicker[parsed.Ticker], rowNum)
	}

	tickers := make([]string, 0, len(rowsByTicker))
	for t := range rowsByTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		if err := s.commit(ctx, *working[ticker]); err != nil {
			s.logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to persist imported position")
			for _, rowNum := range rowsByTicker[ticker] {
				result.Errors = append(result.Errors, model.ImportRowError{
					Row:    rowNum,
					Ticker: ticker,
					Error:  apperrors.ErrFailedToAddTransaction.Error(),
				})
			}
			continue
		}
		result.Accepted += len(rowsByTicker[ticker])
		result.Tickers = append(result.Tickers, ticker)
	}

	refresher := s.refresher
	s.mu.Unlock()

	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })

	s.logger.Info().
		Int("rows", len(rows)).
		Int("accepted", result.Accepted).
		Int("rejected", len(result.Errors)).
		Msg("Transactions imported")

	if result.Accepted > 0 && refresher != nil {
		refresher.RefreshAsync("import")
	}
	return result
}

// RemoveTransaction deletes one transaction and recomputes the position from
// what remains. A position left without holdings is deleted entirely. Removing
// a BUY that later SELLs depend on is rejected with a validation error.
func (s *LedgerService) RemoveTransaction(ctx context.Context, ticker, transactionID string) error {
	ticker = normalizeTicker(ticker)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.positions[ticker]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, ticker)
	}

	next := current.Clone()
	idx := -1
	for i, tx := range next.Transactions {
		if tx.ID == transactionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}

	next.Transactions = append(next.Transactions[:idx], next.Transactions[idx+1:]...)
	next.Recompute()

	// A later SELL may depend on this BUY; dropping it would close the
	// position and lose the lots that remain.
	if next.Quantity.IsNegative() {
		return validation.NewError("id", "removing this transaction would leave more sold than bought")
	}

	if err := s.commit(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToRemoveTransaction, err)
	}
	return nil
}

// Positions returns a snapshot of every position, sorted by ticker.
func (s *LedgerService) Positions() []model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Position returns a snapshot of one position.
func (s *LedgerService) Position(ticker string) (model.Position, error) {
	ticker = normalizeTicker(ticker)

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[ticker]
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, ticker)
	}
	return p.Clone(), nil
}

// Clear removes every position and transaction.
func (s *LedgerService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteAllPositions(ctx); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
	}
	s.positions = make(map[string]*model.Position)
	return nil
}

// ApplyQuotes is the write path of the refresh orchestrator. Under the ledger
// lock it first asks commit whether the results may still be merged, then calls
// apply for every position in ticker order. apply reports whether it changed the
// position; changed positions get their market fields recomputed and are persisted.
//
// It returns false when commit refused the merge.
func (s *LedgerService) ApplyQuotes(ctx context.Context, commit func() bool, apply func(p *model.Position) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if commit != nil && !commit() {
		return false
	}

	tickers := make([]string, 0, len(s.positions))
	for t := range s.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		p := s.positions[t]
		if !apply(p) {
			continue
		}
		p.RecomputeMarket()

		// The in-memory quote stays authoritative; a failed write only loses
		// the cached price across restarts.
		if s.store != nil {
			if err := s.store.SavePosition(ctx, p.Clone()); err != nil {
				s.logger.Warn().Err(err).Str("ticker", t).Msg("Failed to persist refreshed quote")
			}
		}
	}
	return true
}

// working returns a private copy of the ticker's position, or a new empty one.
// Callers must hold s.mu.
func (s *LedgerService) working(ticker string, class model.AssetClass) model.Position {
	if current, ok := s.positions[ticker]; ok {
		return current.Clone()
	}
	return model.Position{Ticker: ticker, AssetClass: class}
}

// appendTransaction adds a transaction to p and recomputes it.
func (s *LedgerService) appendTransaction(p *model.Position, in model.TransactionInput) (model.Transaction, error) {
	if in.Type == model.Sell && in.Quantity.GreaterThan(p.Quantity) {
		return model.Transaction{}, validation.NewError("quantity",
			fmt.Sprintf("sell quantity %s exceeds held quantity %s", in.Quantity, p.Quantity))
	}

	tx := model.Transaction{
		ID:       s.newID(),
		Type:     in.Type,
		Quantity: in.Quantity,
		Price:    in.Price,
		Date:     in.Date,
	}
	p.Transactions = append(p.Transactions, tx)
	p.Recompute()
	return tx, nil
}

// commit persists next and then publishes it, or deletes the position when it
// holds nothing. Callers must hold s.mu.
func (s *LedgerService) commit(ctx context.Context, next model.Position) error {
	if next.Empty() {
		if s.store != nil {
			if err := s.store.DeletePosition(ctx, next.Ticker); err != nil {
				return err
			}
		}
		delete(s.positions, next.Ticker)
		s.logger.Info().Str("ticker", next.Ticker).Msg("Position closed")
		return nil
	}

	if s.store != nil {
		if err := s.store.SavePosition(ctx, next); err != nil {
			return err
		}
	}
	s.positions[next.Ticker] = &next
	return nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrPositionNotFound) ||
		errors.Is(err, apperrors.ErrTransactionNotFound) ||
		errors.Is(err, apperrors.ErrDividendNotFound) ||
		errors.Is(err, apperrors.ErrAlertNotFound) ||
		errors.Is(err, apperrors.ErrSymbolNotFound)
}
