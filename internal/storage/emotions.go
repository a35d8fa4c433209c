package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// FetchRecentEmotions returns emotion readings from the last `days` days,
// oldest first.
func (s *SQLiteStorage) FetchRecentEmotions(ctx context.Context, userID string, days int) ([]model.EmotionRecord, error) {
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
		SELECT id, user_id, recorded_at, score, triggers
		FROM emotion_records
		WHERE user_id = ? AND recorded_at >= ?
		ORDER BY recorded_at
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.EmotionRecord
	for rows.Next() {
		var r model.EmotionRecord
		var triggers sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.RecordedAt, &r.Score, &triggers); err != nil {
			return nil, fmt.Errorf("failed to scan emotion record: %w", err)
		}
		if triggers.Valid && triggers.String != "" {
			if err := json.Unmarshal([]byte(triggers.String), &r.Triggers); err != nil {
				return nil, fmt.Errorf("failed to decode emotion triggers: %w", err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CalculateAverageEmotion returns the mean score over the last `days` days.
// Zero when no readings exist.
func (s *SQLiteStorage) CalculateAverageEmotion(ctx context.Context, userID string, days int) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateDays(days); err != nil {
		return 0, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(score) FROM emotion_records
		WHERE user_id = ? AND recorded_at >= ?
	`, userID, since).Scan(&avg)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to calculate average emotion: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// SaveEmotionRecord inserts or updates one emotion reading.
func (s *SQLiteStorage) SaveEmotionRecord(ctx context.Context, record *model.EmotionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	var triggers []byte
	if len(record.Triggers) > 0 {
		var err error
		triggers, err = json.Marshal(record.Triggers)
		if err != nil {
			return fmt.Errorf("failed to encode emotion triggers: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emotion_records (id, user_id, recorded_at, score, triggers)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recorded_at = excluded.recorded_at,
			score = excluded.score,
			triggers = excluded.triggers
	`, record.ID, record.UserID, record.RecordedAt, record.Score, string(triggers))
	if err != nil {
		return fmt.Errorf("failed to save emotion record: %w", err)
	}
	return nil
}
