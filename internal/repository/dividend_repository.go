package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// DividendRepository provides data access methods for the dividend table.
type DividendRepository struct {
	db *sql.DB
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// GetDividends returns every dividend ordered by payment date. When ticker is
// not empty only that ticker's dividends are returned.
func (r *DividendRepository) GetDividends(ctx context.Context, ticker string) ([]model.Dividend, error) {
	query := `
		SELECT id, ticker, category, gross_amount, net_amount, ex_date, pay_date
		FROM dividend
	`
	var args []any
	if ticker != "" {
		query += ` WHERE ticker = ?`
		args = append(args, ticker)
	}
	query += ` ORDER BY pay_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend table: %w", err)
	}
	defer rows.Close()

	dividends := []model.Dividend{}

	for rows.Next() {
		var exDateStr, payDateStr string
		var d model.Dividend

		err := rows.Scan(
			&d.ID,
			&d.Ticker,
			&d.Category,
			&d.GrossAmount,
			&d.NetAmount,
			&exDateStr,
			&payDateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend table results: %w", err)
		}

		d.ExDate, err = ParseTime(exDateStr)
		if err != nil || d.ExDate.IsZero() {
			return nil, fmt.Errorf("failed to parse ex_date: %w", err)
		}

		d.PayDate, err = ParseTime(payDateStr)
		if err != nil || d.PayDate.IsZero() {
			return nil, fmt.Errorf("failed to parse pay_date: %w", err)
		}

		dividends = append(dividends, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend table: %w", err)
	}

	return dividends, nil
}

// InsertDividends appends dividends in a single database transaction.
func (r *DividendRepository) InsertDividends(ctx context.Context, dividends []model.Dividend) error {
	if len(dividends) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dividend (id, ticker, category, gross_amount, net_amount, ex_date, pay_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare dividend insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range dividends {
		_, err := stmt.ExecContext(ctx,
			d.ID,
			d.Ticker,
			d.Category,
			d.GrossAmount.String(),
			d.NetAmount.String(),
			d.ExDate.Format(dateLayout),
			d.PayDate.Format(dateLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert dividend %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dividends: %w", err)
	}
	return nil
}

// DeleteDividend removes one dividend. It reports whether a row was deleted.
func (r *DividendRepository) DeleteDividend(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dividend WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete dividend %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// DeleteAllDividends empties the dividend table.
func (r *DividendRepository) DeleteAllDividends(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dividend`); err != nil {
		return fmt.Errorf("failed to clear dividend table: %w", err)
	}
	return nil
}
