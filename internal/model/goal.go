package model

import (
	"fmt"
	"time"
)

// GoalStatus tracks where a goal is in its lifecycle.
type GoalStatus string

// Valid goal statuses.
const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// Goal represents a tracked objective with optional deadline.
type Goal struct {
	StartDate   time.Time
	Deadline    *time.Time
	CompletedAt *time.Time
	ID          string
	UserID      string
	Title       string
	Category    string
	Status      GoalStatus
	Progress    float64 // 0.0 to 1.0
}

// Validate ensures the goal has usable data.
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("goal ID is required")
	}
	if g.UserID == "" {
		return fmt.Errorf("goal user ID is required")
	}
	if g.Title == "" {
		return fmt.Errorf("goal title is required")
	}
	if g.Progress < 0.0 || g.Progress > 1.0 {
		return fmt.Errorf("goal progress must be between 0.0 and 1.0, got %.2f", g.Progress)
	}
	return nil
}

// IsActive reports whether the goal still counts toward reminders and pacing.
func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// DaysUntilDeadline returns whole days from now until the deadline,
// truncated toward zero. Returns false when no deadline is set.
func (g *Goal) DaysUntilDeadline(now time.Time) (int, bool) {
	if g.Deadline == nil {
		return 0, false
	}
	return int(g.Deadline.Sub(now).Hours() / 24), true
}

// ExpectedProgress is the linear pace between start and deadline at the given
// time, clamped to [0,1]. Returns false when no deadline is set or the window
// is empty.
func (g *Goal) ExpectedProgress(now time.Time) (float64, bool) {
	if g.Deadline == nil || !g.Deadline.After(g.StartDate) {
		return 0, false
	}
	elapsed := now.Sub(g.StartDate).Hours()
	total := g.Deadline.Sub(g.StartDate).Hours()
	expected := elapsed / total
	if expected < 0 {
		expected = 0
	}
	if expected > 1 {
		expected = 1
	}
	return expected, true
}

// GoalProgress is a dated progress reading, kept as history so pace and
// cross-domain analysis can work from real trajectories instead of a single
// current value.
type GoalProgress struct {
	Date     time.Time
	GoalID   string
	Progress float64
}
