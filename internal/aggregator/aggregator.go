// Package aggregator assembles per-user snapshots by fanning out over the
// domain repositories and caching the combined result.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lifeprism/lifeprism/internal/common"
	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// Aggregator implements service.SnapshotLoader. A snapshot is built from one
// concurrent pass over every repository; any failed read fails the whole
// aggregation and nothing is cached. Concurrent loads for the same uncached
// user share a single fan-out.
type Aggregator struct {
	repos    service.Repositories
	cache    *expirable.LRU[string, *model.Snapshot]
	settings config.Settings
	flight   singleflight.Group
	now      func() time.Time
}

// New creates an Aggregator with the given repositories and settings.
func New(repos service.Repositories, settings config.Settings) *Aggregator {
	return &Aggregator{
		repos:    repos,
		settings: settings,
		cache:    expirable.NewLRU[string, *model.Snapshot](settings.CacheSize, nil, settings.CacheTTL),
		now:      time.Now,
	}
}

// LoadSnapshot returns the cached snapshot when one is still live, otherwise
// aggregates a fresh one. The returned snapshot must be treated as read-only.
func (a *Aggregator) LoadSnapshot(ctx context.Context, userID string) (*model.Snapshot, error) {
	if snapshot, ok := a.cache.Get(userID); ok {
		slog.Debug("snapshot cache hit", "user", userID)
		return snapshot, nil
	}

	result, err, shared := a.flight.Do(userID, func() (any, error) {
		// A concurrent caller may have populated the cache while we waited
		// for the flight slot.
		if snapshot, ok := a.cache.Get(userID); ok {
			return snapshot, nil
		}

		snapshot, err := a.aggregate(ctx, userID)
		if err != nil {
			return nil, err
		}
		a.cache.Add(userID, snapshot)
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("snapshot load shared with concurrent caller", "user", userID)
	}

	return result.(*model.Snapshot), nil
}

// Invalidate drops the cached snapshot so the next load aggregates fresh.
func (a *Aggregator) Invalidate(userID string) {
	a.cache.Remove(userID)
}

// InvalidateAll drops every cached snapshot.
func (a *Aggregator) InvalidateAll() {
	a.cache.Purge()
}

// reads holds everything the fan-out collects before assembly.
type reads struct {
	user             *model.User
	goals            []model.Goal
	goalProgress     []model.GoalProgress
	habits           []model.Habit
	todayCompletions []model.HabitCompletion
	completions      []model.HabitCompletion
	budget           *model.Budget
	financials       []model.FinancialRecord
	categorySpend    map[string]float64
	emotions         []model.EmotionRecord
	averageEmotion   float64
	upcomingEvents   []model.Event
	todayEvents      []model.Event
	recentInsights   []model.Insight
	urgentInsights   []model.Insight
	correlations     []model.Correlation
}

func (a *Aggregator) aggregate(ctx context.Context, userID string) (*model.Snapshot, error) {
	start := a.now()
	lookback := service.DateRange{
		Start: start.AddDate(0, 0, -a.settings.LookbackDays),
		End:   start,
	}
	recent := service.DateRange{
		Start: start.AddDate(0, 0, -a.settings.RecentDays),
		End:   start,
	}

	var r reads
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := a.repos.Users.FetchUser(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("user", err)
		}
		r.user = user
		return nil
	})

	g.Go(func() error {
		goals, err := a.repos.Goals.FetchGoals(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("goals", err)
		}
		progress, err := a.repos.Goals.FetchProgressHistory(gctx, userID, lookback)
		if err != nil {
			return common.NewRepositoryError("goals", err)
		}
		r.goals = goals
		r.goalProgress = progress
		return nil
	})

	g.Go(func() error {
		habits, err := a.repos.Habits.FetchHabits(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("habits", err)
		}
		today, err := a.repos.Habits.FetchTodayCompletions(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("habits", err)
		}
		window, err := a.repos.Habits.FetchCompletions(gctx, userID, lookback)
		if err != nil {
			return common.NewRepositoryError("habits", err)
		}
		r.habits = habits
		r.todayCompletions = today
		r.completions = window
		return nil
	})

	g.Go(func() error {
		budget, err := a.repos.Finances.FetchCurrentBudget(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("finances", err)
		}
		records, err := a.repos.Finances.FetchRecentFinancials(gctx, userID, a.settings.RecentDays)
		if err != nil {
			return common.NewRepositoryError("finances", err)
		}
		spend, err := a.repos.Finances.CalculateCategorySpending(gctx, userID, recent)
		if err != nil {
			return common.NewRepositoryError("finances", err)
		}
		r.budget = budget
		r.financials = records
		r.categorySpend = spend
		return nil
	})

	g.Go(func() error {
		emotions, err := a.repos.Emotions.FetchRecentEmotions(gctx, userID, a.settings.RecentDays)
		if err != nil {
			return common.NewRepositoryError("emotions", err)
		}
		average, err := a.repos.Emotions.CalculateAverageEmotion(gctx, userID, a.settings.RecentDays)
		if err != nil {
			return common.NewRepositoryError("emotions", err)
		}
		r.emotions = emotions
		r.averageEmotion = average
		return nil
	})

	g.Go(func() error {
		upcoming, err := a.repos.Events.FetchUpcomingEvents(gctx, userID, a.settings.UpcomingDays)
		if err != nil {
			return common.NewRepositoryError("events", err)
		}
		today, err := a.repos.Events.FetchTodayEvents(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("events", err)
		}
		r.upcomingEvents = upcoming
		r.todayEvents = today
		return nil
	})

	g.Go(func() error {
		recentInsights, err := a.repos.Insights.FetchRecentInsights(gctx, userID, a.settings.RecentInsights)
		if err != nil {
			return common.NewRepositoryError("insights", err)
		}
		urgent, err := a.repos.Insights.FetchUrgentInsights(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("insights", err)
		}
		r.recentInsights = recentInsights
		r.urgentInsights = urgent
		return nil
	})

	g.Go(func() error {
		correlations, err := a.repos.Correlations.FetchCorrelations(gctx, userID)
		if err != nil {
			return common.NewRepositoryError("correlations", err)
		}
		r.correlations = correlations
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Warn("snapshot aggregation failed", "user", userID, "error", err)
		return nil, err
	}

	snapshot := a.assemble(userID, &r, start)

	slog.Info("snapshot assembled",
		"user", userID,
		"goals", len(r.goals),
		"habits", len(r.habits),
		"records", len(r.financials),
		"emotions", len(r.emotions),
		"duration", a.now().Sub(start))

	return snapshot, nil
}

// assemble derives every computed field from the collected reads in one pass
// so the snapshot is internally consistent.
func (a *Aggregator) assemble(userID string, r *reads, now time.Time) *model.Snapshot {
	goalsView := buildGoalsView(r.goals, r.goalProgress)
	habitsView := buildHabitsView(r.habits, r.todayCompletions, r.completions, a.settings.LookbackDays, now)
	financesView := buildFinancesView(r.budget, r.financials, r.categorySpend, a.settings.AlertThreshold)
	emotionsView := buildEmotionsView(r.emotions, r.averageEmotion)
	eventsView := buildEventsView(r.upcomingEvents, r.todayEvents)

	pending := 0
	for i := range r.recentInsights {
		if r.recentInsights[i].Status == model.StatusNew {
			pending++
		}
	}

	return &model.Snapshot{
		GeneratedAt:  now,
		User:         r.user,
		Goals:        goalsView,
		Habits:       habitsView,
		Finances:     financesView,
		Emotions:     emotionsView,
		Events:       eventsView,
		Insights:     model.InsightsView{Recent: r.recentInsights, Urgent: r.urgentInsights},
		Correlations: r.correlations,
		Summary: model.SnapshotSummary{
			ActiveGoals:     goalsView.Active,
			ActiveHabits:    countActiveHabits(r.habits),
			RecentRecords:   len(r.financials),
			RecentEmotions:  len(r.emotions),
			UpcomingEvents:  len(r.upcomingEvents),
			EventConflicts:  len(eventsView.Conflicts),
			BudgetAlerts:    len(financesView.Alerts),
			PendingInsights: pending,
			TotalSpend:      financesView.TotalSpend,
		},
	}
}

func countActiveHabits(habits []model.Habit) int {
	n := 0
	for i := range habits {
		if habits[i].Active {
			n++
		}
	}
	return n
}
