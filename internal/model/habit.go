package model

import (
	"fmt"
	"time"
)

// HabitKind groups habits for cross-domain analysis.
type HabitKind string

// Known habit kinds. Custom habits carry whatever label the user chose.
const (
	HabitKindExercise HabitKind = "exercise"
	HabitKindStudy    HabitKind = "study"
	HabitKindSleep    HabitKind = "sleep"
	HabitKindCustom   HabitKind = "custom"
)

// Habit is a recurring behavior tracked by daily completions.
type Habit struct {
	CreatedAt     time.Time
	ID            string
	UserID        string
	Name          string
	Kind          HabitKind
	TargetPerWeek int
	Active        bool
}

// Validate ensures the habit has usable data.
func (h *Habit) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("habit ID is required")
	}
	if h.UserID == "" {
		return fmt.Errorf("habit user ID is required")
	}
	if h.Name == "" {
		return fmt.Errorf("habit name is required")
	}
	if h.TargetPerWeek < 0 || h.TargetPerWeek > 7 {
		return fmt.Errorf("habit target must be between 0 and 7 per week, got %d", h.TargetPerWeek)
	}
	return nil
}

// HabitCompletion records one qualifying completion of a habit.
type HabitCompletion struct {
	CompletedAt time.Time
	HabitID     string
	Note        string
}

// HabitStats carries the derived per-habit numbers a snapshot exposes.
// Computed once at aggregation time from the completion history.
type HabitStats struct {
	HabitID          string
	Streak           int
	BestStreak       int
	TotalCompletions int
	SuccessRate      float64 // completed days / expected days over the window
	BestHour         int     // most frequent completion hour, -1 when unknown
}

// ApplyCompletion returns the stats after recording one more day's outcome.
// The input is never mutated; state transitions stay explicit and testable.
func ApplyCompletion(stats HabitStats, completed bool) HabitStats {
	next := stats
	if completed {
		next.Streak++
		next.TotalCompletions++
		if next.Streak > next.BestStreak {
			next.BestStreak = next.Streak
		}
	} else {
		next.Streak = 0
	}
	return next
}
