package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// FetchGoals returns every goal for a user.
func (s *SQLiteStorage) FetchGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	return s.queryGoals(ctx, userID, "")
}

// FetchActiveGoals returns only goals still in progress.
func (s *SQLiteStorage) FetchActiveGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	return s.queryGoals(ctx, userID, string(model.GoalStatusActive))
}

func (s *SQLiteStorage) queryGoals(ctx context.Context, userID, status string) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, title, COALESCE(category, ''), status, progress,
		       start_date, deadline, completed_at
		FROM goals WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY start_date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		var goal model.Goal
		var deadline, completedAt sql.NullTime
		if err := rows.Scan(
			&goal.ID, &goal.UserID, &goal.Title, &goal.Category, &goal.Status,
			&goal.Progress, &goal.StartDate, &deadline, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if deadline.Valid {
			d := deadline.Time
			goal.Deadline = &d
		}
		if completedAt.Valid {
			c := completedAt.Time
			goal.CompletedAt = &c
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// FetchProgressHistory returns dated progress readings inside the range.
func (s *SQLiteStorage) FetchProgressHistory(ctx context.Context, userID string, rng service.DateRange) ([]model.GoalProgress, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return nil, ErrInvalidDateRange
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT goal_id, date, progress
		FROM goal_progress
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.GoalProgress
	for rows.Next() {
		var p model.GoalProgress
		if err := rows.Scan(&p.GoalID, &p.Date, &p.Progress); err != nil {
			return nil, fmt.Errorf("failed to scan goal progress: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

// SaveGoal inserts or updates a goal.
func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := goal.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, category, status, progress, start_date, deadline, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			status = excluded.status,
			progress = excluded.progress,
			deadline = excluded.deadline,
			completed_at = excluded.completed_at
	`, goal.ID, goal.UserID, goal.Title, goal.Category, goal.Status,
		goal.Progress, goal.StartDate, goal.Deadline, goal.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// RecordGoalProgress appends one dated progress reading.
func (s *SQLiteStorage) RecordGoalProgress(ctx context.Context, userID string, progress model.GoalProgress) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goal_progress (goal_id, user_id, date, progress)
		VALUES (?, ?, ?, ?)
	`, progress.GoalID, userID, progress.Date, progress.Progress)
	if err != nil {
		return fmt.Errorf("failed to record goal progress: %w", err)
	}
	return nil
}
