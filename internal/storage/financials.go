package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// FetchCurrentBudget returns the budget for the month containing now, or nil
// when no budget is configured for it.
func (s *SQLiteStorage) FetchCurrentBudget(ctx context.Context, userID string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var budget model.Budget
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, month, alert_threshold
		FROM budgets WHERE user_id = ? AND month = ?
	`, userID, month).Scan(&budget.ID, &budget.UserID, &budget.Month, &budget.AlertThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch budget: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, amount FROM budget_limits WHERE budget_id = ?
	`, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget limits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	budget.CategoryLimits = make(map[string]float64)
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget limit: %w", err)
		}
		budget.CategoryLimits[category] = amount
	}
	return &budget, rows.Err()
}

// FetchRecentFinancials returns transactions from the last `days` days,
// newest first.
func (s *SQLiteStorage) FetchRecentFinancials(ctx context.Context, userID string, days int) ([]model.FinancialRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateDays(days); err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, hash, date, amount,
		       COALESCE(category, ''), COALESCE(merchant, ''), COALESCE(note, '')
		FROM financial_records
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.FinancialRecord
	for rows.Next() {
		var r model.FinancialRecord
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Hash, &r.Date, &r.Amount,
			&r.Category, &r.Merchant, &r.Note,
		); err != nil {
			return nil, fmt.Errorf("failed to scan financial record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CalculateCategorySpending sums positive amounts per category inside the
// range. Refunds and income carry non-positive amounts and are excluded.
func (s *SQLiteStorage) CalculateCategorySpending(ctx context.Context, userID string, rng service.DateRange) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return nil, ErrInvalidDateRange
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(category, ''), SUM(amount)
		FROM financial_records
		WHERE user_id = ? AND date >= ? AND date <= ? AND amount > 0
		GROUP BY category
	`, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate category spending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	spending := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category spending: %w", err)
		}
		spending[category] = total
	}
	return spending, rows.Err()
}

// SaveFinancialRecords inserts transactions, silently skipping any whose hash
// is already stored. Returns the number of records actually inserted.
func (s *SQLiteStorage) SaveFinancialRecords(ctx context.Context, records []model.FinancialRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO financial_records (id, user_id, hash, date, amount, category, merchant, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range records {
		r := &records[i]
		if r.Hash == "" {
			r.Hash = r.GenerateHash()
		}
		result, execErr := stmt.ExecContext(ctx,
			r.ID, r.UserID, r.Hash, r.Date, r.Amount, r.Category, r.Merchant, r.Note)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert financial record: %w", execErr)
		}
		n, _ := result.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit financial records: %w", err)
	}
	return inserted, nil
}

// SaveBudget inserts or updates a monthly budget and its category limits.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, month, alert_threshold)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, month) DO UPDATE SET alert_threshold = excluded.alert_threshold
	`, budget.ID, budget.UserID, budget.Month, budget.AlertThreshold); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budget_limits WHERE budget_id = ?`, budget.ID); err != nil {
		return fmt.Errorf("failed to clear budget limits: %w", err)
	}
	for category, amount := range budget.CategoryLimits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budget_limits (budget_id, category, amount) VALUES (?, ?, ?)
		`, budget.ID, category, amount); err != nil {
			return fmt.Errorf("failed to save budget limit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit budget: %w", err)
	}
	return nil
}
