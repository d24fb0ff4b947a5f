package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// AlertRepository provides data access methods for the alert table.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the provided database connection.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// GetAlerts returns every alert ordered by ticker.
func (r *AlertRepository) GetAlerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, target, kind
		FROM alert
		ORDER BY ticker ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert table: %w", err)
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Ticker, &a.Target, &a.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan alert table results: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert table: %w", err)
	}
	return alerts, nil
}

// GetAlert returns one alert, or sql.ErrNoRows when it does not exist.
func (r *AlertRepository) GetAlert(ctx context.Context, id string) (model.Alert, error) {
	var a model.Alert
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker, target, kind FROM alert WHERE id = ?
	`, id).Scan(&a.ID, &a.Ticker, &a.Target, &a.Kind)
	if err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

// InsertAlert stores a new alert.
func (r *AlertRepository) InsertAlert(ctx context.Context, a model.Alert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert (id, ticker, target, kind) VALUES (?, ?, ?, ?)
	`, a.ID, a.Ticker, a.Target, string(a.Kind))
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// DeleteAlert removes one alert. It reports whether a row was deleted.
func (r *AlertRepository) DeleteAlert(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alert WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete alert %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
