package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					timezone TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					category TEXT,
					status TEXT NOT NULL DEFAULT 'active',
					progress REAL NOT NULL DEFAULT 0,
					start_date DATETIME NOT NULL,
					deadline DATETIME,
					completed_at DATETIME
				)`,
				`CREATE INDEX idx_goals_user ON goals(user_id)`,
				`CREATE INDEX idx_goals_status ON goals(user_id, status)`,

				`CREATE TABLE IF NOT EXISTS goal_progress (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					goal_id TEXT NOT NULL,
					user_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					progress REAL NOT NULL,
					FOREIGN KEY (goal_id) REFERENCES goals(id)
				)`,
				`CREATE INDEX idx_goal_progress_user_date ON goal_progress(user_id, date)`,

				`CREATE TABLE IF NOT EXISTS habits (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					kind TEXT NOT NULL DEFAULT 'custom',
					target_per_week INTEGER NOT NULL DEFAULT 7,
					active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_habits_user ON habits(user_id)`,

				`CREATE TABLE IF NOT EXISTS habit_completions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					habit_id TEXT NOT NULL,
					user_id TEXT NOT NULL,
					completed_at DATETIME NOT NULL,
					note TEXT,
					FOREIGN KEY (habit_id) REFERENCES habits(id)
				)`,
				`CREATE INDEX idx_completions_user_date ON habit_completions(user_id, completed_at)`,

				`CREATE TABLE IF NOT EXISTS financial_records (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					amount REAL NOT NULL,
					category TEXT,
					merchant TEXT,
					note TEXT
				)`,
				`CREATE INDEX idx_financials_user_date ON financial_records(user_id, date)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					month DATETIME NOT NULL,
					alert_threshold REAL NOT NULL DEFAULT 0.8
				)`,
				`CREATE UNIQUE INDEX idx_budgets_user_month ON budgets(user_id, month)`,

				`CREATE TABLE IF NOT EXISTS budget_limits (
					budget_id TEXT NOT NULL,
					category TEXT NOT NULL,
					amount REAL NOT NULL,
					PRIMARY KEY (budget_id, category),
					FOREIGN KEY (budget_id) REFERENCES budgets(id)
				)`,

				`CREATE TABLE IF NOT EXISTS emotion_records (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					recorded_at DATETIME NOT NULL,
					score REAL NOT NULL,
					triggers TEXT
				)`,
				`CREATE INDEX idx_emotions_user_date ON emotion_records(user_id, recorded_at)`,

				`CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					start_time DATETIME NOT NULL,
					end_time DATETIME NOT NULL,
					location TEXT
				)`,
				`CREATE INDEX idx_events_user_start ON events(user_id, start_time)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Insight and correlation persistence",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS insights (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					type TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL,
					description TEXT,
					priority INTEGER NOT NULL DEFAULT 3,
					urgency REAL NOT NULL DEFAULT 0,
					impact REAL NOT NULL DEFAULT 0,
					confidence REAL NOT NULL DEFAULT 0,
					actionable BOOLEAN NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'new',
					actions TEXT,
					params TEXT,
					generated_at DATETIME NOT NULL,
					valid_until DATETIME
				)`,
				`CREATE INDEX idx_insights_user_generated ON insights(user_id, generated_at)`,
				`CREATE INDEX idx_insights_user_status ON insights(user_id, status)`,

				`CREATE TABLE IF NOT EXISTS correlations (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					dimension_a TEXT NOT NULL,
					dimension_b TEXT NOT NULL,
					coefficient REAL,
					significance REAL,
					description TEXT,
					sample_count INTEGER NOT NULL DEFAULT 0,
					examples TEXT,
					discovered_at DATETIME NOT NULL,
					last_verified DATETIME
				)`,
				`CREATE UNIQUE INDEX idx_correlations_user_pair ON correlations(user_id, dimension_a, dimension_b)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
