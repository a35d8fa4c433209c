package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifeprism/lifeprism/internal/common"
	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func seedTestUser(t *testing.T, store *SQLiteStorage, userID string) {
	t.Helper()
	err := store.SaveUser(context.Background(), &model.User{ID: userID, Name: "Test User"})
	if err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// A second run must be a no-op, not a failure.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}

func TestFetchUser_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.FetchUser(context.Background(), "nobody")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveUser_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user := &model.User{ID: "user1", Name: "Ada", Timezone: "Europe/London"}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}

	got, err := store.FetchUser(ctx, "user1")
	if err != nil {
		t.Fatalf("Failed to fetch user: %v", err)
	}
	if got.Name != "Ada" || got.Timezone != "Europe/London" {
		t.Errorf("Unexpected user: %+v", got)
	}
}

func TestGoals_ActiveFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	start := time.Now().AddDate(0, 0, -30)
	goals := []model.Goal{
		{ID: "g1", UserID: "user1", Title: "Learn piano", Status: model.GoalStatusActive, Progress: 0.3, StartDate: start},
		{ID: "g2", UserID: "user1", Title: "Run 5k", Status: model.GoalStatusCompleted, Progress: 1.0, StartDate: start},
		{ID: "g3", UserID: "user1", Title: "Old plan", Status: model.GoalStatusAbandoned, StartDate: start},
	}
	for i := range goals {
		if err := store.SaveGoal(ctx, &goals[i]); err != nil {
			t.Fatalf("Failed to save goal %s: %v", goals[i].ID, err)
		}
	}

	all, err := store.FetchGoals(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchGoals failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 goals, got %d", len(all))
	}

	active, err := store.FetchActiveGoals(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchActiveGoals failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "g1" {
		t.Errorf("Expected only g1 active, got %+v", active)
	}
}

func TestGoalProgress_RangeQuery(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		err := store.RecordGoalProgress(ctx, "user1", model.GoalProgress{
			GoalID:   "g1",
			Date:     now.AddDate(0, 0, -i),
			Progress: 1.0 - float64(i)*0.1,
		})
		if err != nil {
			t.Fatalf("Failed to record progress: %v", err)
		}
	}

	history, err := store.FetchProgressHistory(ctx, "user1", service.DateRange{
		Start: now.AddDate(0, 0, -5),
		End:   now,
	})
	if err != nil {
		t.Fatalf("FetchProgressHistory failed: %v", err)
	}
	if len(history) != 6 {
		t.Errorf("Expected 6 readings in range, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Date.Before(history[i-1].Date) {
			t.Errorf("History not ordered by date at index %d", i)
		}
	}

	_, err = store.FetchProgressHistory(ctx, "user1", service.DateRange{Start: now, End: now.AddDate(0, 0, -1)})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestHabits_CompletionsToday(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	habit := model.Habit{ID: "h1", UserID: "user1", Name: "Morning run", Kind: model.HabitKindExercise, TargetPerWeek: 5, Active: true}
	if err := store.SaveHabit(ctx, &habit); err != nil {
		t.Fatalf("Failed to save habit: %v", err)
	}

	now := time.Now()
	completions := []model.HabitCompletion{
		{HabitID: "h1", CompletedAt: now.Add(-time.Hour)},
		{HabitID: "h1", CompletedAt: now.AddDate(0, 0, -1)},
		{HabitID: "h1", CompletedAt: now.AddDate(0, 0, -3)},
	}
	for _, c := range completions {
		if err := store.RecordCompletion(ctx, "user1", c); err != nil {
			t.Fatalf("Failed to record completion: %v", err)
		}
	}

	today, err := store.FetchTodayCompletions(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchTodayCompletions failed: %v", err)
	}
	if len(today) != 1 {
		t.Errorf("Expected 1 completion today, got %d", len(today))
	}

	week, err := store.FetchCompletions(ctx, "user1", service.DateRange{
		Start: now.AddDate(0, 0, -7),
		End:   now,
	})
	if err != nil {
		t.Fatalf("FetchCompletions failed: %v", err)
	}
	if len(week) != 3 {
		t.Errorf("Expected 3 completions this week, got %d", len(week))
	}
}

func TestHabits_ActiveFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	habits := []model.Habit{
		{ID: "h1", UserID: "user1", Name: "Run", Kind: model.HabitKindExercise, TargetPerWeek: 3, Active: true},
		{ID: "h2", UserID: "user1", Name: "Read", Kind: model.HabitKindStudy, TargetPerWeek: 7, Active: false},
	}
	for i := range habits {
		if err := store.SaveHabit(ctx, &habits[i]); err != nil {
			t.Fatalf("Failed to save habit: %v", err)
		}
	}

	active, err := store.FetchActiveHabits(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchActiveHabits failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "h1" {
		t.Errorf("Expected only h1 active, got %+v", active)
	}
}

func TestSaveFinancialRecords_DeduplicatesOnHash(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	date := time.Now().UTC().AddDate(0, 0, -2)
	records := make([]model.FinancialRecord, 3)
	for i := range records {
		records[i] = model.FinancialRecord{
			ID:       fmt.Sprintf("txn-%d", i),
			UserID:   "user1",
			Date:     date,
			Amount:   float64(i+1) * 10,
			Category: "food",
			Merchant: fmt.Sprintf("Cafe %d", i),
		}
		records[i].Hash = records[i].GenerateHash()
	}

	inserted, err := store.SaveFinancialRecords(ctx, records)
	if err != nil {
		t.Fatalf("SaveFinancialRecords failed: %v", err)
	}
	if inserted != 3 {
		t.Errorf("Expected 3 inserted, got %d", inserted)
	}

	// Importing the same file again inserts nothing new.
	again := make([]model.FinancialRecord, len(records))
	copy(again, records)
	for i := range again {
		again[i].ID = fmt.Sprintf("txn-dup-%d", i)
	}
	inserted, err = store.SaveFinancialRecords(ctx, again)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("Expected 0 inserted on re-import, got %d", inserted)
	}

	recent, err := store.FetchRecentFinancials(ctx, "user1", 30)
	if err != nil {
		t.Fatalf("FetchRecentFinancials failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 records, got %d", len(recent))
	}
}

func TestCalculateCategorySpending_ExcludesRefunds(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	now := time.Now().UTC()
	records := []model.FinancialRecord{
		{ID: "t1", UserID: "user1", Date: now.AddDate(0, 0, -1), Amount: 40, Category: "food", Merchant: "Grocer"},
		{ID: "t2", UserID: "user1", Date: now.AddDate(0, 0, -2), Amount: 60, Category: "food", Merchant: "Cafe"},
		{ID: "t3", UserID: "user1", Date: now.AddDate(0, 0, -2), Amount: 25, Category: "transport", Merchant: "Metro"},
		{ID: "t4", UserID: "user1", Date: now.AddDate(0, 0, -3), Amount: -15, Category: "food", Merchant: "Grocer"},
	}
	for i := range records {
		records[i].Hash = records[i].GenerateHash()
	}
	if _, err := store.SaveFinancialRecords(ctx, records); err != nil {
		t.Fatalf("SaveFinancialRecords failed: %v", err)
	}

	spending, err := store.CalculateCategorySpending(ctx, "user1", service.DateRange{
		Start: now.AddDate(0, 0, -7),
		End:   now,
	})
	if err != nil {
		t.Fatalf("CalculateCategorySpending failed: %v", err)
	}
	if spending["food"] != 100 {
		t.Errorf("Expected food spending 100, got %.2f", spending["food"])
	}
	if spending["transport"] != 25 {
		t.Errorf("Expected transport spending 25, got %.2f", spending["transport"])
	}
}

func TestBudget_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	now := time.Now().UTC()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	budget := &model.Budget{
		ID:             "b1",
		UserID:         "user1",
		Month:          month,
		AlertThreshold: 0.8,
		CategoryLimits: map[string]float64{"food": 400, "transport": 120},
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("SaveBudget failed: %v", err)
	}

	got, err := store.FetchCurrentBudget(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchCurrentBudget failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected budget, got nil")
	}
	if got.AlertThreshold != 0.8 {
		t.Errorf("Expected threshold 0.8, got %.2f", got.AlertThreshold)
	}
	if limit, ok := got.LimitFor("food"); !ok || limit != 400 {
		t.Errorf("Expected food limit 400, got %.2f (ok=%v)", limit, ok)
	}

	// Saving again replaces the limit set.
	budget.CategoryLimits = map[string]float64{"food": 350}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("Second SaveBudget failed: %v", err)
	}
	got, err = store.FetchCurrentBudget(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchCurrentBudget failed: %v", err)
	}
	if len(got.CategoryLimits) != 1 || got.CategoryLimits["food"] != 350 {
		t.Errorf("Expected replaced limits, got %+v", got.CategoryLimits)
	}
}

func TestFetchCurrentBudget_NoneConfigured(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.FetchCurrentBudget(context.Background(), "user1")
	if err != nil {
		t.Fatalf("FetchCurrentBudget failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil budget, got %+v", got)
	}
}

func TestEmotions_RoundTripWithTriggers(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	now := time.Now().UTC()
	records := []model.EmotionRecord{
		{ID: "e1", UserID: "user1", RecordedAt: now.AddDate(0, 0, -1), Score: 0.6, Triggers: []string{"work", "sleep"}},
		{ID: "e2", UserID: "user1", RecordedAt: now.AddDate(0, 0, -2), Score: -0.4},
	}
	for i := range records {
		if err := store.SaveEmotionRecord(ctx, &records[i]); err != nil {
			t.Fatalf("SaveEmotionRecord failed: %v", err)
		}
	}

	got, err := store.FetchRecentEmotions(ctx, "user1", 7)
	if err != nil {
		t.Fatalf("FetchRecentEmotions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	// Oldest first.
	if got[0].ID != "e2" {
		t.Errorf("Expected e2 first, got %s", got[0].ID)
	}
	if len(got[1].Triggers) != 2 || got[1].Triggers[0] != "work" {
		t.Errorf("Expected triggers to round-trip, got %+v", got[1].Triggers)
	}

	avg, err := store.CalculateAverageEmotion(ctx, "user1", 7)
	if err != nil {
		t.Fatalf("CalculateAverageEmotion failed: %v", err)
	}
	if avg < 0.09 || avg > 0.11 {
		t.Errorf("Expected average ~0.1, got %.3f", avg)
	}
}

func TestCalculateAverageEmotion_Empty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	avg, err := store.CalculateAverageEmotion(context.Background(), "user1", 7)
	if err != nil {
		t.Fatalf("CalculateAverageEmotion failed: %v", err)
	}
	if avg != 0 {
		t.Errorf("Expected 0 for no readings, got %.3f", avg)
	}
}

func TestEvents_UpcomingAndToday(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	now := time.Now()
	events := []model.Event{
		{ID: "ev1", UserID: "user1", Title: "Standup", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
		{ID: "ev2", UserID: "user1", Title: "Review", Start: now.AddDate(0, 0, 3), End: now.AddDate(0, 0, 3).Add(time.Hour)},
		{ID: "ev3", UserID: "user1", Title: "Far off", Start: now.AddDate(0, 0, 20), End: now.AddDate(0, 0, 20).Add(time.Hour)},
	}
	for i := range events {
		if err := store.SaveEvent(ctx, &events[i]); err != nil {
			t.Fatalf("SaveEvent failed: %v", err)
		}
	}

	upcoming, err := store.FetchUpcomingEvents(ctx, "user1", 7)
	if err != nil {
		t.Fatalf("FetchUpcomingEvents failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Errorf("Expected 2 upcoming events, got %d", len(upcoming))
	}

	today, err := store.FetchTodayEvents(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchTodayEvents failed: %v", err)
	}
	// ev1 starts within the next hour; whether that is still today depends on
	// the clock, so only assert it never includes the later events.
	for _, ev := range today {
		if ev.ID != "ev1" {
			t.Errorf("Unexpected event in today's list: %s", ev.ID)
		}
	}
}

func TestInsights_RoundTripTypedActions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	validUntil := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Second)
	insights := []model.Insight{
		{
			ID:          "i1",
			UserID:      "user1",
			Type:        model.InsightTypeWarning,
			Category:    model.CategoryFinancial,
			Title:       "Food budget nearly spent",
			Description: "You have used 92% of your food budget.",
			Priority:    4,
			Urgency:     0.9,
			Impact:      0.6,
			Confidence:  0.95,
			Actionable:  true,
			Status:      model.StatusNew,
			GeneratedAt: time.Now().UTC().Truncate(time.Second),
			ValidUntil:  &validUntil,
			Actions: []model.SuggestedAction{
				{
					Type:     model.ActionReviewBudget,
					Action:   "Review your food budget",
					Priority: 1,
					Params:   model.ReviewBudgetParams{Category: "food"},
				},
				{
					Type:     model.ActionPlanMeals,
					Action:   "Plan meals for the week",
					Priority: 2,
					Params:   model.PlanMealsParams{Category: "food", WeeklySpend: 112.50},
				},
			},
		},
		{
			ID:          "i2",
			UserID:      "user1",
			Type:        model.InsightTypeAchievement,
			Category:    model.CategoryHabit,
			Title:       "21 day streak",
			Priority:    2,
			Urgency:     0.1,
			Impact:      0.3,
			Confidence:  1.0,
			Status:      model.StatusNew,
			GeneratedAt: time.Now().UTC().Truncate(time.Second),
		},
	}
	if err := store.SaveInsights(ctx, insights); err != nil {
		t.Fatalf("SaveInsights failed: %v", err)
	}

	got, err := store.FetchRecentInsights(ctx, "user1", 10)
	if err != nil {
		t.Fatalf("FetchRecentInsights failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 insights, got %d", len(got))
	}

	var warning *model.Insight
	for i := range got {
		if got[i].ID == "i1" {
			warning = &got[i]
		}
	}
	if warning == nil {
		t.Fatal("Insight i1 not returned")
	}
	if len(warning.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(warning.Actions))
	}
	review, ok := warning.Actions[0].Params.(model.ReviewBudgetParams)
	if !ok {
		t.Fatalf("Expected ReviewBudgetParams, got %T", warning.Actions[0].Params)
	}
	if review.Category != "food" {
		t.Errorf("Expected category food, got %s", review.Category)
	}
	meals, ok := warning.Actions[1].Params.(model.PlanMealsParams)
	if !ok {
		t.Fatalf("Expected PlanMealsParams, got %T", warning.Actions[1].Params)
	}
	if meals.WeeklySpend != 112.50 {
		t.Errorf("Expected weekly spend 112.50, got %.2f", meals.WeeklySpend)
	}
	if warning.ValidUntil == nil || !warning.ValidUntil.Equal(validUntil) {
		t.Errorf("Expected valid_until to round-trip, got %v", warning.ValidUntil)
	}

	urgent, err := store.FetchUrgentInsights(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchUrgentInsights failed: %v", err)
	}
	if len(urgent) != 1 || urgent[0].ID != "i1" {
		t.Errorf("Expected only i1 urgent, got %+v", urgent)
	}
}

func TestCorrelations_UpsertOnPair(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedTestUser(t, store, "user1")

	coefficient := -0.72
	significance := 0.01
	corr := &model.Correlation{
		ID:           "c1",
		UserID:       "user1",
		DimensionA:   "emotion.score",
		DimensionB:   "financial.spending",
		Coefficient:  &coefficient,
		Significance: &significance,
		Description:  "Spending rises on low-mood days",
		SampleCount:  42,
		DiscoveredAt: time.Now().UTC().Truncate(time.Second),
		Examples: []model.CorrelationExample{
			{Date: time.Now().UTC().AddDate(0, 0, -3).Truncate(time.Second), ValueA: -0.8, ValueB: 140},
		},
	}
	if err := store.SaveCorrelation(ctx, corr); err != nil {
		t.Fatalf("SaveCorrelation failed: %v", err)
	}

	// Re-analysis of the same pair overwrites, not duplicates.
	updated := *corr
	newCoefficient := -0.65
	updated.ID = "c2"
	updated.Coefficient = &newCoefficient
	updated.SampleCount = 50
	if err := store.SaveCorrelation(ctx, &updated); err != nil {
		t.Fatalf("Second SaveCorrelation failed: %v", err)
	}

	got, err := store.FetchCorrelations(ctx, "user1")
	if err != nil {
		t.Fatalf("FetchCorrelations failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 correlation, got %d", len(got))
	}
	if got[0].Coefficient == nil || *got[0].Coefficient != -0.65 {
		t.Errorf("Expected coefficient -0.65, got %v", got[0].Coefficient)
	}
	if got[0].SampleCount != 50 {
		t.Errorf("Expected sample count 50, got %d", got[0].SampleCount)
	}
	if len(got[0].Examples) != 1 || got[0].Examples[0].ValueB != 140 {
		t.Errorf("Expected examples to round-trip, got %+v", got[0].Examples)
	}
}

func TestValidation_Guards(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.FetchGoals(ctx, ""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("Expected ErrEmptyString for empty user ID, got %v", err)
	}
	if _, err := store.FetchRecentEmotions(ctx, "user1", 0); !errors.Is(err, ErrInvalidDayCount) {
		t.Errorf("Expected ErrInvalidDayCount for 0 days, got %v", err)
	}
	if err := store.SaveGoal(ctx, nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Expected ErrNilParameter for nil goal, got %v", err)
	}
}
