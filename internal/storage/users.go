package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lifeprism/lifeprism/internal/common"
	"github.com/lifeprism/lifeprism/internal/model"
)

// FetchUser returns the user profile for the given id.
func (s *SQLiteStorage) FetchUser(ctx context.Context, userID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(timezone, ''), created_at
		FROM users WHERE id = ?
	`, userID).Scan(&user.ID, &user.Name, &user.Timezone, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// SaveUser inserts or updates a user profile.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, timezone)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, timezone = excluded.timezone
	`, user.ID, user.Name, user.Timezone)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
