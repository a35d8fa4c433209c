package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lifeprism/lifeprism/internal/model"
)

// FetchCorrelations returns every stored correlation for a user.
func (s *SQLiteStorage) FetchCorrelations(ctx context.Context, userID string) ([]model.Correlation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, dimension_a, dimension_b, coefficient, significance,
		       COALESCE(description, ''), sample_count, COALESCE(examples, ''),
		       discovered_at, last_verified
		FROM correlations
		WHERE user_id = ?
		ORDER BY dimension_a, dimension_b
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var correlations []model.Correlation
	for rows.Next() {
		var corr model.Correlation
		var coefficient, significance sql.NullFloat64
		var examples string
		var lastVerified sql.NullTime
		if err := rows.Scan(
			&corr.ID, &corr.UserID, &corr.DimensionA, &corr.DimensionB,
			&coefficient, &significance, &corr.Description, &corr.SampleCount,
			&examples, &corr.DiscoveredAt, &lastVerified,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correlation: %w", err)
		}
		if coefficient.Valid {
			c := coefficient.Float64
			corr.Coefficient = &c
		}
		if significance.Valid {
			p := significance.Float64
			corr.Significance = &p
		}
		if lastVerified.Valid {
			v := lastVerified.Time
			corr.LastVerified = &v
		}
		if examples != "" {
			if err := json.Unmarshal([]byte(examples), &corr.Examples); err != nil {
				return nil, fmt.Errorf("failed to decode correlation examples: %w", err)
			}
		}
		correlations = append(correlations, corr)
	}
	return correlations, rows.Err()
}

// SaveCorrelation inserts or replaces the stored correlation for a dimension
// pair. A re-analysis of the same pair overwrites the previous finding.
func (s *SQLiteStorage) SaveCorrelation(ctx context.Context, corr *model.Correlation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if corr == nil {
		return fmt.Errorf("%w: corr", ErrNilParameter)
	}

	var examples string
	if len(corr.Examples) > 0 {
		data, err := json.Marshal(corr.Examples)
		if err != nil {
			return fmt.Errorf("failed to encode correlation examples: %w", err)
		}
		examples = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO correlations (id, user_id, dimension_a, dimension_b,
			coefficient, significance, description, sample_count, examples,
			discovered_at, last_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, dimension_a, dimension_b) DO UPDATE SET
			coefficient = excluded.coefficient,
			significance = excluded.significance,
			description = excluded.description,
			sample_count = excluded.sample_count,
			examples = excluded.examples,
			last_verified = excluded.last_verified
	`, corr.ID, corr.UserID, corr.DimensionA, corr.DimensionB,
		corr.Coefficient, corr.Significance, corr.Description, corr.SampleCount,
		examples, corr.DiscoveredAt, corr.LastVerified)
	if err != nil {
		return fmt.Errorf("failed to save correlation: %w", err)
	}
	return nil
}
