package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// PositionRepository persists positions and the transactions they own.
// It is the durable side of the in-memory ledger and is only written through
// the ledger service.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// LoadPositions returns every stored position with its transactions in
// insertion order. Derived fields are left for the caller to recompute.
func (r *PositionRepository) LoadPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, asset_class, current_price, current_price_original, fx_rate_applied,
		price_earnings, price_to_book, dividend_yield, return_on_equity, change_percent, last_quote_at
		FROM position
		ORDER BY ticker ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	index := make(map[string]int)

	for rows.Next() {
		var p model.Position
		var fx, pe, pb, dy, roe, change sql.NullFloat64
		var lastQuote sql.NullString

		err := rows.Scan(
			&p.Ticker,
			&p.AssetClass,
			&p.CurrentPrice,
			&p.CurrentPriceOriginalCurrency,
			&fx,
			&pe,
			&pb,
			&dy,
			&roe,
			&change,
			&lastQuote,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		p.FXRateApplied = floatPtr(fx)
		p.PriceEarnings = floatPtr(pe)
		p.PriceToBook = floatPtr(pb)
		p.DividendYield = floatPtr(dy)
		p.ReturnOnEquity = floatPtr(roe)
		p.ChangePercent = floatPtr(change)

		// LastQuoteAt is nullable
		if lastQuote.Valid {
			t, err := ParseTime(lastQuote.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse last_quote_at: %w", err)
			}
			p.LastQuoteAt = &t
		}

		index[p.Ticker] = len(positions)
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, type, quantity, price, date
		FROM "transaction"
		ORDER BY ticker ASC, seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var t model.Transaction
		var ticker, dateStr string

		if err := txRows.Scan(&t.ID, &ticker, &t.Type, &t.Quantity, &t.Price, &dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		i, ok := index[ticker]
		if !ok {
			continue
		}
		positions[i].Transactions = append(positions[i].Transactions, t)
	}
	if err = txRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return positions, nil
}

// SavePosition upserts the position row and replaces its transactions in a
// single database transaction.
func (r *PositionRepository) SavePosition(ctx context.Context, p model.Position) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lastQuote sql.NullString
	if p.LastQuoteAt != nil {
		lastQuote = sql.NullString{String: p.LastQuoteAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO position (ticker, asset_class, current_price, current_price_original, fx_rate_applied,
			price_earnings, price_to_book, dividend_yield, return_on_equity, change_percent, last_quote_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			asset_class = excluded.asset_class,
			current_price = excluded.current_price,
			current_price_original = excluded.current_price_original,
			fx_rate_applied = excluded.fx_rate_applied,
			price_earnings = excluded.price_earnings,
			price_to_book = excluded.price_to_book,
			dividend_yield = excluded.dividend_yield,
			return_on_equity = excluded.return_on_equity,
			change_percent = excluded.change_percent,
			last_quote_at = excluded.last_quote_at
	`,
		p.Ticker,
		string(p.AssetClass),
		p.CurrentPrice,
		p.CurrentPriceOriginalCurrency,
		nullFloat(p.FXRateApplied),
		nullFloat(p.PriceEarnings),
		nullFloat(p.PriceToBook),
		nullFloat(p.DividendYield),
		nullFloat(p.ReturnOnEquity),
		nullFloat(p.ChangePercent),
		lastQuote,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", p.Ticker, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM "transaction" WHERE ticker = ?`, p.Ticker); err != nil {
		return fmt.Errorf("failed to clear transactions for %s: %w", p.Ticker, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO "transaction" (id, ticker, type, quantity, price, date, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range p.Transactions {
		_, err := stmt.ExecContext(ctx,
			t.ID,
			p.Ticker,
			string(t.Type),
			t.Quantity.String(),
			t.Price.String(),
			t.Date.Format(dateLayout),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position %s: %w", p.Ticker, err)
	}
	return nil
}

// DeletePosition removes a position and, through the foreign key cascade, its transactions.
func (r *PositionRepository) DeletePosition(ctx context.Context, ticker string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM position WHERE ticker = ?`, ticker); err != nil {
		return fmt.Errorf("failed to delete position %s: %w", ticker, err)
	}
	return nil
}

// DeleteAllPositions empties the ledger tables.
func (r *PositionRepository) DeleteAllPositions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM "transaction"`); err != nil {
		return fmt.Errorf("failed to clear transaction table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM position`); err != nil {
		return fmt.Errorf("failed to clear position table: %w", err)
	}
	return nil
}
