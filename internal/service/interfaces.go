// Package service defines the interfaces the pipeline consumes and exposes.
// Repositories are external collaborators; the engines here only read through
// these contracts and never reach into storage directly.
package service

import (
	"context"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// DateRange bounds a repository query. Zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// UserRepository reads user profiles.
type UserRepository interface {
	FetchUser(ctx context.Context, userID string) (*model.User, error)
}

// GoalRepository reads goals and their progress history.
type GoalRepository interface {
	FetchGoals(ctx context.Context, userID string) ([]model.Goal, error)
	FetchActiveGoals(ctx context.Context, userID string) ([]model.Goal, error)
	FetchProgressHistory(ctx context.Context, userID string, rng DateRange) ([]model.GoalProgress, error)
}

// HabitRepository reads habits and completions.
type HabitRepository interface {
	FetchHabits(ctx context.Context, userID string) ([]model.Habit, error)
	FetchActiveHabits(ctx context.Context, userID string) ([]model.Habit, error)
	FetchTodayCompletions(ctx context.Context, userID string) ([]model.HabitCompletion, error)
	FetchCompletions(ctx context.Context, userID string, rng DateRange) ([]model.HabitCompletion, error)
}

// FinanceRepository reads budgets and transactions.
type FinanceRepository interface {
	FetchCurrentBudget(ctx context.Context, userID string) (*model.Budget, error)
	FetchRecentFinancials(ctx context.Context, userID string, days int) ([]model.FinancialRecord, error)
	CalculateCategorySpending(ctx context.Context, userID string, rng DateRange) (map[string]float64, error)
}

// EmotionRepository reads emotional-state records.
type EmotionRepository interface {
	FetchRecentEmotions(ctx context.Context, userID string, days int) ([]model.EmotionRecord, error)
	CalculateAverageEmotion(ctx context.Context, userID string, days int) (float64, error)
}

// EventRepository reads calendar events.
type EventRepository interface {
	FetchUpcomingEvents(ctx context.Context, userID string, days int) ([]model.Event, error)
	FetchTodayEvents(ctx context.Context, userID string) ([]model.Event, error)
}

// InsightRepository reads and persists generated insights.
type InsightRepository interface {
	FetchRecentInsights(ctx context.Context, userID string, limit int) ([]model.Insight, error)
	FetchUrgentInsights(ctx context.Context, userID string) ([]model.Insight, error)
	SaveInsights(ctx context.Context, insights []model.Insight) error
}

// CorrelationRepository reads and persists discovered correlations.
type CorrelationRepository interface {
	FetchCorrelations(ctx context.Context, userID string) ([]model.Correlation, error)
	SaveCorrelation(ctx context.Context, corr *model.Correlation) error
}

// Repositories bundles every read interface the aggregator fans out over.
type Repositories struct {
	Users        UserRepository
	Goals        GoalRepository
	Habits       HabitRepository
	Finances     FinanceRepository
	Emotions     EmotionRepository
	Events       EventRepository
	Insights     InsightRepository
	Correlations CorrelationRepository
}

// SnapshotLoader is the aggregation contract the presentation layer calls.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error)
	Invalidate(userID string)
	InvalidateAll()
}

// CorrelationAnalyzer discovers and re-verifies cross-domain correlations.
type CorrelationAnalyzer interface {
	AnalyzeAll(ctx context.Context, userID string) ([]model.Correlation, error)
	AnalyzeOne(ctx context.Context, userID, dimensionA, dimensionB string) (*model.Correlation, error)
	Verify(ctx context.Context, corr *model.Correlation) (bool, error)
}

// InsightGenerator converts a snapshot plus correlations into ranked insights.
type InsightGenerator interface {
	Generate(ctx context.Context, snapshot *model.Snapshot, correlations []model.Correlation) []model.Insight
}
