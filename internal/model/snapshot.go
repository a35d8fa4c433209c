package model

import "time"

// GoalsView is the goal slice of a snapshot plus its derived statistics.
type GoalsView struct {
	Goals          []Goal
	RecentProgress []GoalProgress
	Active         int
	Completed      int
	CompletionRate float64 // completed / total, 0 when no goals
}

// HabitsView is the habit slice of a snapshot.
type HabitsView struct {
	Stats            map[string]HabitStats // keyed by habit ID
	Habits           []Habit
	TodayCompletions []HabitCompletion
	SuccessRate      float64 // mean per-habit success rate over the window
}

// FinancesView is the financial slice of a snapshot.
type FinancesView struct {
	Budget        *Budget
	CategorySpend map[string]float64
	Records       []FinancialRecord
	Alerts        []BudgetAlert
	TotalSpend    float64
}

// EmotionsView is the emotional-state slice of a snapshot.
type EmotionsView struct {
	Recent   []EmotionRecord
	Triggers []string
	Average  float64
	Trend    EmotionTrend
}

// EventsView is the calendar slice of a snapshot.
type EventsView struct {
	Upcoming  []Event
	Today     []Event
	Conflicts []EventConflict
}

// InsightsView carries previously persisted insights for context.
type InsightsView struct {
	Recent []Insight
	Urgent []Insight
}

// SnapshotSummary is the derived roll-up across all domains.
type SnapshotSummary struct {
	ActiveGoals     int
	ActiveHabits    int
	RecentRecords   int
	RecentEmotions  int
	UpcomingEvents  int
	EventConflicts  int
	BudgetAlerts    int
	PendingInsights int
	TotalSpend      float64
}

// Snapshot is the complete aggregated view of one user across all domains at
// a point in time. It is built in one pass from a consistent set of reads and
// never mutated afterward; a refresh produces a whole new Snapshot.
type Snapshot struct {
	GeneratedAt  time.Time
	User         *User
	Goals        GoalsView
	Habits       HabitsView
	Finances     FinancesView
	Emotions     EmotionsView
	Events       EventsView
	Insights     InsightsView
	Correlations []Correlation
	Summary      SnapshotSummary
}
