package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeprism/lifeprism/internal/model"
)

func TestBudgetWarnings_UrgencyBands(t *testing.T) {
	g := newTestGenerator()

	tests := []struct {
		name        string
		usageRate   float64
		wantUrgency float64
	}{
		{name: "over the limit", usageRate: 1.05, wantUrgency: 1.0},
		{name: "ninety percent", usageRate: 0.92, wantUrgency: 0.9},
		{name: "eighty percent", usageRate: 0.85, wantUrgency: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := emptySnapshot()
			snapshot.Finances.Alerts = []model.BudgetAlert{
				{Category: "transport", Limit: 100, Spent: tt.usageRate * 100, UsageRate: tt.usageRate},
			}

			insights := g.budgetWarnings(snapshot)
			require.Len(t, insights, 1)
			assert.Equal(t, model.InsightTypeWarning, insights[0].Type)
			assert.Equal(t, model.CategoryFinancial, insights[0].Category)
			assert.InDelta(t, tt.wantUrgency, insights[0].Urgency, 1e-9)
		})
	}
}

func TestBudgetWarnings_OnlyFiresPerAlert(t *testing.T) {
	g := newTestGenerator()

	// No alerts in the snapshot means no budget warnings; the snapshot
	// builder is the single place the threshold comparison happens.
	snapshot := emptySnapshot()
	snapshot.Finances.CategorySpend = map[string]float64{"food": 9999}
	assert.Empty(t, g.budgetWarnings(snapshot))
}

func TestBudgetWarnings_FoodGetsMealPlanAction(t *testing.T) {
	g := newTestGenerator()

	snapshot := emptySnapshot()
	snapshot.Finances.Alerts = []model.BudgetAlert{
		{Category: "food", Limit: 400, Spent: 390, UsageRate: 0.975},
		{Category: "transport", Limit: 100, Spent: 95, UsageRate: 0.95},
	}

	insights := g.budgetWarnings(snapshot)
	require.Len(t, insights, 2)

	food := insights[0]
	require.Len(t, food.Actions, 2)
	assert.Equal(t, model.ActionPlanMeals, food.Actions[1].Type)
	params, ok := food.Actions[1].Params.(model.PlanMealsParams)
	require.True(t, ok, "meal plan action carries typed params")
	assert.Equal(t, "food", params.Category)

	transport := insights[1]
	require.Len(t, transport.Actions, 1)
	assert.Equal(t, model.ActionReviewBudget, transport.Actions[0].Type)
}

func TestDeadlineReminders_Window(t *testing.T) {
	g := newTestGenerator()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	goalDue := func(hours int, progress float64) model.Goal {
		deadline := now.Add(time.Duration(hours) * time.Hour)
		return model.Goal{
			ID:        "g1",
			Title:     "Finish course",
			Status:    model.GoalStatusActive,
			Progress:  progress,
			StartDate: now.AddDate(0, 0, -30),
			Deadline:  &deadline,
		}
	}

	tests := []struct {
		name  string
		goal  model.Goal
		fires bool
	}{
		{name: "due in 3 days", goal: goalDue(3*24+2, 0.4), fires: true},
		{name: "due today", goal: goalDue(2, 0.4), fires: true},
		{name: "due in exactly 7 days", goal: goalDue(7*24+1, 0.4), fires: true},
		{name: "due in 8 days", goal: goalDue(8*24+2, 0.4), fires: false},
		{name: "already overdue", goal: goalDue(-24, 0.4), fires: false},
		{name: "no deadline", goal: model.Goal{ID: "g2", Title: "Open ended", Status: model.GoalStatusActive}, fires: false},
		{
			name: "completed goal ignored",
			goal: func() model.Goal {
				goal := goalDue(48, 1.0)
				goal.Status = model.GoalStatusCompleted
				return goal
			}(),
			fires: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := emptySnapshot()
			snapshot.Goals.Goals = []model.Goal{tt.goal}

			insights := g.deadlineReminders(snapshot, now)
			if tt.fires {
				assert.Len(t, insights, 1)
			} else {
				assert.Empty(t, insights)
			}
		})
	}
}

func TestDeadlineReminders_ThreeDaysOutBehindPace(t *testing.T) {
	g := newTestGenerator()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	deadline := now.Add(3*24*time.Hour + 2*time.Hour)
	snapshot := emptySnapshot()
	snapshot.Goals.Goals = []model.Goal{
		{
			ID: "g1", Title: "Write thesis chapter",
			Status: model.GoalStatusActive, Progress: 0.4,
			StartDate: now.AddDate(0, 0, -4), Deadline: &deadline,
		},
	}

	insights := g.deadlineReminders(snapshot, now)
	require.Len(t, insights, 1)

	insight := insights[0]
	assert.Equal(t, model.InsightTypeWarning, insight.Type)
	assert.Equal(t, model.CategoryGoal, insight.Category)
	assert.InDelta(t, 1.0-3.0/7.0, insight.Urgency, 1e-9)
	assert.InDelta(t, 0.8, insight.Impact, 1e-9, "behind 50% raises impact")

	// Behind pace offers both the sprint and the rescope.
	require.Len(t, insight.Actions, 2)
	assert.Equal(t, model.ActionSprintPlan, insight.Actions[0].Type)
	assert.Equal(t, model.ActionAdjustGoal, insight.Actions[1].Type)
}

func TestPatternInsights_FromCorrelations(t *testing.T) {
	g := newTestGenerator()
	now := time.Now()

	strongR := -0.75
	sigP := 0.01
	weakR := 0.25
	insigP := 0.2

	correlations := []model.Correlation{
		{
			DimensionA: "emotion.score", DimensionB: "financial.spending",
			Coefficient: &strongR, Significance: &sigP,
			Description: "strong link",
		},
		{
			DimensionA: "habit.exercise", DimensionB: "emotion.score",
			Coefficient: &weakR, Significance: &insigP,
			Description: "weak and insignificant",
		},
	}

	insights := g.patternInsights(emptySnapshot(), correlations, now)

	require.Len(t, insights, 1, "insignificant correlations are skipped")
	insight := insights[0]
	assert.Equal(t, model.InsightTypePattern, insight.Type)
	assert.Equal(t, model.CategoryFinancial, insight.Category)
	assert.InDelta(t, 0.8, insight.Impact, 1e-9, "strong band impact")
	assert.InDelta(t, 0.8, insight.Confidence, 1e-9, "significance bonus applied")
	assert.Contains(t, insight.Title, "mood")
}

func TestLowMoodSpendingSpike(t *testing.T) {
	g := newTestGenerator()
	now := time.Now()

	build := func(average float64, recentDaily, olderDaily float64) *model.Snapshot {
		snapshot := emptySnapshot()
		snapshot.Emotions.Average = average
		for i := 0; i < 30; i++ {
			amount := olderDaily
			if i < 3 {
				amount = recentDaily
			}
			snapshot.Finances.Records = append(snapshot.Finances.Records, model.FinancialRecord{
				Date:   now.Add(-time.Duration(i*24)*time.Hour - time.Hour),
				Amount: amount,
			})
		}
		return snapshot
	}

	t.Run("fires on low mood and spiking spend", func(t *testing.T) {
		insights := g.patternInsights(build(-0.4, 100, 20), nil, now)
		require.Len(t, insights, 1)
		assert.Equal(t, "Spending is up while mood is down", insights[0].Title)
	})

	t.Run("quiet when mood is fine", func(t *testing.T) {
		assert.Empty(t, g.patternInsights(build(0.1, 100, 20), nil, now))
	})

	t.Run("quiet when spending is flat", func(t *testing.T) {
		assert.Empty(t, g.patternInsights(build(-0.4, 20, 20), nil, now))
	})
}

func TestHabitOptimizations(t *testing.T) {
	g := newTestGenerator()

	snapshot := emptySnapshot()
	snapshot.Habits.Habits = []model.Habit{
		{ID: "h1", Name: "Meditate", Kind: model.HabitKindCustom, TargetPerWeek: 7, Active: true},
		{ID: "h2", Name: "Read", Kind: model.HabitKindCustom, TargetPerWeek: 5, Active: true},
		{ID: "h3", Name: "Stretch", Kind: model.HabitKindCustom, TargetPerWeek: 7, Active: true},
	}
	snapshot.Habits.Stats = map[string]model.HabitStats{
		"h1": {HabitID: "h1", SuccessRate: 0.3, TotalCompletions: 12, BestHour: 7},
		"h2": {HabitID: "h2", SuccessRate: 0.8, TotalCompletions: 40, BestHour: 21}, // doing fine
		"h3": {HabitID: "h3", SuccessRate: 0.2, TotalCompletions: 4, BestHour: -1},  // too little history
	}

	insights := g.habitOptimizations(snapshot)

	require.Len(t, insights, 1)
	insight := insights[0]
	assert.Equal(t, model.InsightTypeRecommendation, insight.Type)
	assert.Equal(t, model.CategoryHabit, insight.Category)
	require.Len(t, insight.Actions, 2)

	lower, ok := insight.Actions[0].Params.(model.LowerTargetParams)
	require.True(t, ok)
	assert.Equal(t, 2, lower.SuggestedTarget, "0.3 success on 7/week rounds to 2")

	reminder, ok := insight.Actions[1].Params.(model.SetReminderParams)
	require.True(t, ok)
	assert.Equal(t, 7, reminder.Hour)
}

func TestGoalPacing(t *testing.T) {
	g := newTestGenerator()
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	start := now.AddDate(0, 0, -10)
	deadline := now.AddDate(0, 0, 10)

	snapshot := emptySnapshot()
	snapshot.Goals.Goals = []model.Goal{
		// Expected 50% at the midpoint, actual 20%: lagging well past 10 points.
		{ID: "g1", Title: "Lagging", Status: model.GoalStatusActive, Progress: 0.2, StartDate: start, Deadline: &deadline},
		// 45% against 50% expected is within tolerance.
		{ID: "g2", Title: "Close enough", Status: model.GoalStatusActive, Progress: 0.45, StartDate: start, Deadline: &deadline},
	}

	insights := g.goalPacing(snapshot, now)

	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Title, "Lagging")
	pace, ok := insights[0].Actions[0].Params.(model.SetDailyPaceParams)
	require.True(t, ok)
	assert.InDelta(t, 0.08, pace.RequiredRate, 1e-9, "80% remaining over 10 days")
}

func TestScheduleConflicts(t *testing.T) {
	g := newTestGenerator()
	now := time.Now()

	snapshot := emptySnapshot()
	snapshot.Events.Conflicts = []model.EventConflict{
		{EventID: "standup", OtherEventID: "dentist", OverlapStart: now, OverlapEnd: now.Add(30 * time.Minute)},
	}

	insights := g.scheduleConflicts(snapshot)

	require.Len(t, insights, 1)
	assert.Equal(t, model.CategoryTime, insights[0].Category)
	params, ok := insights[0].Actions[0].Params.(model.RescheduleEventParams)
	require.True(t, ok)
	assert.Equal(t, "standup", params.EventID)
	assert.Equal(t, "dentist", params.ConflictingEventID)
}

func TestAchievements_StreakMilestones(t *testing.T) {
	g := newTestGenerator()
	now := time.Now()

	habitWithStreak := func(streak, best int) *model.Snapshot {
		snapshot := emptySnapshot()
		snapshot.Habits.Habits = []model.Habit{
			{ID: "h1", Name: "Journal", Kind: model.HabitKindCustom, TargetPerWeek: 7, Active: true},
		}
		snapshot.Habits.Stats = map[string]model.HabitStats{
			"h1": {HabitID: "h1", Streak: streak, BestStreak: best},
		}
		return snapshot
	}

	t.Run("21 day establishment milestone", func(t *testing.T) {
		insights := g.achievements(habitWithStreak(21, 21), now)
		require.Len(t, insights, 1, "milestone day yields exactly one achievement")
		assert.Equal(t, model.InsightTypeAchievement, insights[0].Type)
		assert.Contains(t, insights[0].Description, "establishing")
	})

	t.Run("66 day automation milestone", func(t *testing.T) {
		insights := g.achievements(habitWithStreak(66, 66), now)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Description, "automatic")
	})

	t.Run("new personal best beyond a week", func(t *testing.T) {
		insights := g.achievements(habitWithStreak(12, 12), now)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Title, "personal best")
	})

	t.Run("short streak stays quiet", func(t *testing.T) {
		assert.Empty(t, g.achievements(habitWithStreak(5, 5), now))
	})

	t.Run("long streak below previous best stays quiet", func(t *testing.T) {
		assert.Empty(t, g.achievements(habitWithStreak(12, 30), now))
	})
}

func TestAchievements_GoalCompletedRecently(t *testing.T) {
	g := newTestGenerator()
	now := time.Now()

	recently := now.Add(-2 * time.Hour)
	lastWeek := now.Add(-8 * 24 * time.Hour)

	snapshot := emptySnapshot()
	snapshot.Goals.Goals = []model.Goal{
		{ID: "g1", Title: "Fresh win", Status: model.GoalStatusCompleted, CompletedAt: &recently},
		{ID: "g2", Title: "Old news", Status: model.GoalStatusCompleted, CompletedAt: &lastWeek},
	}

	insights := g.achievements(snapshot, now)

	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Title, "Fresh win")
	assert.Equal(t, model.CategoryGoal, insights[0].Category)
}
