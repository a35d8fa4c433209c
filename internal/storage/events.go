package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// FetchUpcomingEvents returns events starting between now and `days` from now.
func (s *SQLiteStorage) FetchUpcomingEvents(ctx context.Context, userID string, days int) ([]model.Event, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	now := time.Now()
	return s.queryEvents(ctx, userID, now, now.AddDate(0, 0, days))
}

// FetchTodayEvents returns events starting today, local time.
func (s *SQLiteStorage) FetchTodayEvents(ctx context.Context, userID string) ([]model.Event, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.queryEvents(ctx, userID, midnight, midnight.AddDate(0, 0, 1))
}

func (s *SQLiteStorage) queryEvents(ctx context.Context, userID string, from, to time.Time) ([]model.Event, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, start_time, end_time, COALESCE(location, '')
		FROM events
		WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(
			&event.ID, &event.UserID, &event.Title,
			&event.Start, &event.End, &event.Location,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// SaveEvent inserts or updates a calendar event.
func (s *SQLiteStorage) SaveEvent(ctx context.Context, event *model.Event) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, title, start_time, end_time, location)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			location = excluded.location
	`, event.ID, event.UserID, event.Title, event.Start, event.End, event.Location)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}
