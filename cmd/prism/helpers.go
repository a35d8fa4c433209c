package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/service"
	"github.com/lifeprism/lifeprism/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/prism/prism.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildRepositories wires every domain repository to the shared store.
func buildRepositories(store *storage.SQLiteStorage) service.Repositories {
	return service.Repositories{
		Users:        store,
		Goals:        store,
		Habits:       store,
		Finances:     store,
		Emotions:     store,
		Events:       store,
		Insights:     store,
		Correlations: store,
	}
}

// currentUser resolves which user the command operates on.
func currentUser() string {
	if id := viper.GetString("user.id"); id != "" {
		return id
	}
	return "me"
}
