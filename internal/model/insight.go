package model

import (
	"fmt"
	"time"
)

// InsightType classifies what kind of finding an insight is.
type InsightType string

// Insight types.
const (
	InsightTypeWarning        InsightType = "warning"
	InsightTypePattern        InsightType = "pattern"
	InsightTypeRecommendation InsightType = "recommendation"
	InsightTypeAchievement    InsightType = "achievement"
	InsightTypeOpportunity    InsightType = "opportunity"
)

// InsightCategory names the life area an insight belongs to.
type InsightCategory string

// Insight categories.
const (
	CategoryFinancial InsightCategory = "financial"
	CategoryHealth    InsightCategory = "health"
	CategoryHabit     InsightCategory = "habit"
	CategoryGoal      InsightCategory = "goal"
	CategoryTime      InsightCategory = "time"
	CategoryGeneral   InsightCategory = "general"
)

// InsightStatus tracks the insight lifecycle.
type InsightStatus string

// Lifecycle statuses.
const (
	StatusNew       InsightStatus = "new"
	StatusViewed    InsightStatus = "viewed"
	StatusActed     InsightStatus = "acted"
	StatusDismissed InsightStatus = "dismissed"
)

// ActionType identifies a machine-actionable suggestion kind.
type ActionType string

// Action types emitted by the detectors.
const (
	ActionReviewBudget    ActionType = "review_budget"
	ActionPlanMeals       ActionType = "plan_meals"
	ActionSprintPlan      ActionType = "sprint_plan"
	ActionAdjustGoal      ActionType = "adjust_goal"
	ActionSetDailyPace    ActionType = "set_daily_pace"
	ActionLowerTarget     ActionType = "lower_target"
	ActionSetReminder     ActionType = "set_reminder"
	ActionRescheduleEvent ActionType = "reschedule_event"
	ActionReviewPattern   ActionType = "review_pattern"
)

// ActionParams is the typed payload carried by a suggested action. Each
// action type has its own parameter struct so callers never dig through
// untyped maps.
type ActionParams interface {
	actionParams()
}

// ReviewBudgetParams asks for a review of one category's budget line.
type ReviewBudgetParams struct {
	Category string
}

// PlanMealsParams suggests meal planning to rein in food spending.
type PlanMealsParams struct {
	Category    string
	WeeklySpend float64
}

// SprintPlanParams proposes a focused push toward a near goal deadline.
type SprintPlanParams struct {
	GoalID   string
	DaysLeft int
}

// AdjustGoalParams proposes extending or rescoping a goal.
type AdjustGoalParams struct {
	GoalID string
}

// SetDailyPaceParams carries the daily progress rate needed to finish a
// goal on time.
type SetDailyPaceParams struct {
	GoalID       string
	RequiredRate float64 // progress units per day
}

// LowerTargetParams suggests an easier weekly target for a struggling habit.
type LowerTargetParams struct {
	HabitID         string
	SuggestedTarget int
}

// SetReminderParams suggests a reminder at the habit's best historical hour.
type SetReminderParams struct {
	HabitID string
	Hour    int
}

// RescheduleEventParams names the overlapping pair to untangle.
type RescheduleEventParams struct {
	EventID            string
	ConflictingEventID string
}

// ReviewPatternParams points at the correlated dimensions behind a pattern.
type ReviewPatternParams struct {
	DimensionA string
	DimensionB string
}

func (ReviewBudgetParams) actionParams()    {}
func (PlanMealsParams) actionParams()       {}
func (SprintPlanParams) actionParams()      {}
func (AdjustGoalParams) actionParams()      {}
func (SetDailyPaceParams) actionParams()    {}
func (LowerTargetParams) actionParams()     {}
func (SetReminderParams) actionParams()     {}
func (RescheduleEventParams) actionParams() {}
func (ReviewPatternParams) actionParams()   {}

// SuggestedAction is one concrete thing the user could do about an insight.
type SuggestedAction struct {
	Params   ActionParams
	Action   string // free-text description
	Type     ActionType
	Priority int // ordering within the insight, 1 = first
}

// Insight is a single ranked, actionable finding.
type Insight struct {
	GeneratedAt time.Time
	ValidUntil  *time.Time
	Params      map[string]string // small labels used in rendering, not logic
	ID          string
	UserID      string
	Title       string
	Description string
	Type        InsightType
	Category    InsightCategory
	Status      InsightStatus
	Actions     []SuggestedAction
	Priority    int     // 1 to 5
	Urgency     float64 // 0.0 to 1.0
	Impact      float64 // 0.0 to 1.0
	Confidence  float64 // 0.0 to 1.0
	Actionable  bool
}

// Validate ensures the insight scores are inside their documented ranges.
func (i *Insight) Validate() error {
	if i.Title == "" {
		return fmt.Errorf("insight title is required")
	}
	if i.Priority < 1 || i.Priority > 5 {
		return fmt.Errorf("insight priority must be between 1 and 5, got %d", i.Priority)
	}
	for name, v := range map[string]float64{
		"urgency":    i.Urgency,
		"impact":     i.Impact,
		"confidence": i.Confidence,
	} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("insight %s must be between 0.0 and 1.0, got %.2f", name, v)
		}
	}
	return nil
}

// OverallScore is the composite ranking score. The priority band feeds back
// into the score on top of urgency and impact; that double weighting matches
// the shipped scoring and is pinned by tests.
func (i *Insight) OverallScore() float64 {
	return 0.4*i.Urgency + 0.3*i.Impact + 0.2*i.Confidence + 0.1*(float64(i.Priority)/5.0)
}

// IsValid reports whether the insight is still within its validity window.
func (i *Insight) IsValid(now time.Time) bool {
	return i.ValidUntil == nil || !now.After(*i.ValidUntil)
}

// Insights supports sorting by overall score, descending. Equal scores keep
// their relative order when sorted stably, so detector emission order is the
// tie-break.
type Insights []Insight

// Len implements sort.Interface.
func (s Insights) Len() int { return len(s) }

// Less implements sort.Interface - higher scores come first.
func (s Insights) Less(i, j int) bool {
	return s[i].OverallScore() > s[j].OverallScore()
}

// Swap implements sort.Interface.
func (s Insights) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
