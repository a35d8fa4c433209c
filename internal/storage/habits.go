package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// FetchHabits returns every habit for a user.
func (s *SQLiteStorage) FetchHabits(ctx context.Context, userID string) ([]model.Habit, error) {
	return s.queryHabits(ctx, userID, false)
}

// FetchActiveHabits returns only habits currently being tracked.
func (s *SQLiteStorage) FetchActiveHabits(ctx context.Context, userID string) ([]model.Habit, error) {
	return s.queryHabits(ctx, userID, true)
}

func (s *SQLiteStorage) queryHabits(ctx context.Context, userID string, activeOnly bool) ([]model.Habit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, kind, target_per_week, active, created_at
		FROM habits WHERE user_id = ?`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var habits []model.Habit
	for rows.Next() {
		var habit model.Habit
		if err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.Name, &habit.Kind,
			&habit.TargetPerWeek, &habit.Active, &habit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

// FetchTodayCompletions returns completions recorded since local midnight.
func (s *SQLiteStorage) FetchTodayCompletions(ctx context.Context, userID string) ([]model.HabitCompletion, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.FetchCompletions(ctx, userID, service.DateRange{Start: midnight, End: now})
}

// FetchCompletions returns completions inside the range.
func (s *SQLiteStorage) FetchCompletions(ctx context.Context, userID string, rng service.DateRange) ([]model.HabitCompletion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return nil, ErrInvalidDateRange
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id, completed_at, COALESCE(note, '')
		FROM habit_completions
		WHERE user_id = ? AND completed_at >= ? AND completed_at <= ?
		ORDER BY completed_at
	`, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var completions []model.HabitCompletion
	for rows.Next() {
		var c model.HabitCompletion
		if err := rows.Scan(&c.HabitID, &c.CompletedAt, &c.Note); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// SaveHabit inserts or updates a habit.
func (s *SQLiteStorage) SaveHabit(ctx context.Context, habit *model.Habit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("%w: habit", ErrNilParameter)
	}
	if err := habit.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, name, kind, target_per_week, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			target_per_week = excluded.target_per_week,
			active = excluded.active
	`, habit.ID, habit.UserID, habit.Name, habit.Kind, habit.TargetPerWeek, habit.Active)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

// RecordCompletion appends one habit completion.
func (s *SQLiteStorage) RecordCompletion(ctx context.Context, userID string, completion model.HabitCompletion) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (habit_id, user_id, completed_at, note)
		VALUES (?, ?, ?, ?)
	`, completion.HabitID, userID, completion.CompletedAt, completion.Note)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}
