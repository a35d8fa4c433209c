package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

var errInjected = errors.New("injected repository failure")

// mockRepos implements every repository interface with canned data, a total
// read counter, and per-domain failure injection.
type mockRepos struct {
	user         *model.User
	budget       *model.Budget
	spend        map[string]float64
	failDomain   string
	goals        []model.Goal
	progress     []model.GoalProgress
	habits       []model.Habit
	today        []model.HabitCompletion
	completions  []model.HabitCompletion
	financials   []model.FinancialRecord
	emotions     []model.EmotionRecord
	upcoming     []model.Event
	todayEvents  []model.Event
	insights     []model.Insight
	urgent       []model.Insight
	correlations []model.Correlation
	saved        []model.Correlation
	average      float64
	reads        atomic.Int64
	readDelay    time.Duration
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		user:  &model.User{ID: "u1", Name: "Test User"},
		spend: map[string]float64{},
	}
}

func (m *mockRepos) bundle() service.Repositories {
	return service.Repositories{
		Users:        m,
		Goals:        m,
		Habits:       m,
		Finances:     m,
		Emotions:     m,
		Events:       m,
		Insights:     m,
		Correlations: m,
	}
}

func (m *mockRepos) read(domain string) error {
	m.reads.Add(1)
	if m.readDelay > 0 {
		time.Sleep(m.readDelay)
	}
	if m.failDomain == domain {
		return errInjected
	}
	return nil
}

func (m *mockRepos) FetchUser(_ context.Context, _ string) (*model.User, error) {
	if err := m.read("user"); err != nil {
		return nil, err
	}
	return m.user, nil
}

func (m *mockRepos) FetchGoals(_ context.Context, _ string) ([]model.Goal, error) {
	if err := m.read("goals"); err != nil {
		return nil, err
	}
	return m.goals, nil
}

func (m *mockRepos) FetchActiveGoals(_ context.Context, _ string) ([]model.Goal, error) {
	if err := m.read("goals"); err != nil {
		return nil, err
	}
	var active []model.Goal
	for _, g := range m.goals {
		if g.IsActive() {
			active = append(active, g)
		}
	}
	return active, nil
}

func (m *mockRepos) FetchProgressHistory(_ context.Context, _ string, _ service.DateRange) ([]model.GoalProgress, error) {
	if err := m.read("goals"); err != nil {
		return nil, err
	}
	return m.progress, nil
}

func (m *mockRepos) FetchHabits(_ context.Context, _ string) ([]model.Habit, error) {
	if err := m.read("habits"); err != nil {
		return nil, err
	}
	return m.habits, nil
}

func (m *mockRepos) FetchActiveHabits(_ context.Context, _ string) ([]model.Habit, error) {
	if err := m.read("habits"); err != nil {
		return nil, err
	}
	var active []model.Habit
	for _, h := range m.habits {
		if h.Active {
			active = append(active, h)
		}
	}
	return active, nil
}

func (m *mockRepos) FetchTodayCompletions(_ context.Context, _ string) ([]model.HabitCompletion, error) {
	if err := m.read("habits"); err != nil {
		return nil, err
	}
	return m.today, nil
}

func (m *mockRepos) FetchCompletions(_ context.Context, _ string, _ service.DateRange) ([]model.HabitCompletion, error) {
	if err := m.read("habits"); err != nil {
		return nil, err
	}
	return m.completions, nil
}

func (m *mockRepos) FetchCurrentBudget(_ context.Context, _ string) (*model.Budget, error) {
	if err := m.read("finances"); err != nil {
		return nil, err
	}
	return m.budget, nil
}

func (m *mockRepos) FetchRecentFinancials(_ context.Context, _ string, _ int) ([]model.FinancialRecord, error) {
	if err := m.read("finances"); err != nil {
		return nil, err
	}
	return m.financials, nil
}

func (m *mockRepos) CalculateCategorySpending(_ context.Context, _ string, _ service.DateRange) (map[string]float64, error) {
	if err := m.read("finances"); err != nil {
		return nil, err
	}
	return m.spend, nil
}

func (m *mockRepos) FetchRecentEmotions(_ context.Context, _ string, _ int) ([]model.EmotionRecord, error) {
	if err := m.read("emotions"); err != nil {
		return nil, err
	}
	return m.emotions, nil
}

func (m *mockRepos) CalculateAverageEmotion(_ context.Context, _ string, _ int) (float64, error) {
	if err := m.read("emotions"); err != nil {
		return 0, err
	}
	return m.average, nil
}

func (m *mockRepos) FetchUpcomingEvents(_ context.Context, _ string, _ int) ([]model.Event, error) {
	if err := m.read("events"); err != nil {
		return nil, err
	}
	return m.upcoming, nil
}

func (m *mockRepos) FetchTodayEvents(_ context.Context, _ string) ([]model.Event, error) {
	if err := m.read("events"); err != nil {
		return nil, err
	}
	return m.todayEvents, nil
}

func (m *mockRepos) FetchRecentInsights(_ context.Context, _ string, _ int) ([]model.Insight, error) {
	if err := m.read("insights"); err != nil {
		return nil, err
	}
	return m.insights, nil
}

func (m *mockRepos) FetchUrgentInsights(_ context.Context, _ string) ([]model.Insight, error) {
	if err := m.read("insights"); err != nil {
		return nil, err
	}
	return m.urgent, nil
}

func (m *mockRepos) SaveInsights(_ context.Context, insights []model.Insight) error {
	m.insights = append(m.insights, insights...)
	return nil
}

func (m *mockRepos) FetchCorrelations(_ context.Context, _ string) ([]model.Correlation, error) {
	if err := m.read("correlations"); err != nil {
		return nil, err
	}
	return m.correlations, nil
}

func (m *mockRepos) SaveCorrelation(_ context.Context, corr *model.Correlation) error {
	m.saved = append(m.saved, *corr)
	return nil
}
