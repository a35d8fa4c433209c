package insight

import (
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// personalBestFloor is the streak length a new personal best must exceed
// before it is worth celebrating.
const personalBestFloor = 7

// achievements celebrates streak milestones, new personal bests and freshly
// completed goals. A milestone day never double-fires as a personal best.
func (g *Generator) achievements(snapshot *model.Snapshot, now time.Time) []model.Insight {
	var insights []model.Insight

	for i := range snapshot.Habits.Habits {
		habit := &snapshot.Habits.Habits[i]
		stats, ok := snapshot.Habits.Stats[habit.ID]
		if !ok || stats.Streak == 0 {
			continue
		}

		if milestone := g.milestoneFor(stats.Streak); milestone > 0 {
			insights = append(insights, model.Insight{
				Type:        model.InsightTypeAchievement,
				Category:    model.CategoryHabit,
				Title:       fmt.Sprintf("%d days of %q", stats.Streak, habit.Name),
				Description: milestoneDescription(habit.Name, milestone),
				Urgency:     0.1,
				Impact:      0.4,
				Confidence:  1.0,
				Actionable:  false,
				Params:      map[string]string{"habit": habit.ID, "milestone": fmt.Sprintf("%d", milestone)},
			})
			continue
		}

		if stats.Streak > personalBestFloor && stats.Streak == stats.BestStreak {
			insights = append(insights, model.Insight{
				Type:     model.InsightTypeAchievement,
				Category: model.CategoryHabit,
				Title:    fmt.Sprintf("New personal best for %q", habit.Name),
				Description: fmt.Sprintf(
					"A %d-day streak is your longest run of %q yet.",
					stats.Streak, habit.Name),
				Urgency:    0.1,
				Impact:     0.4,
				Confidence: 1.0,
				Actionable: false,
				Params:     map[string]string{"habit": habit.ID},
			})
		}
	}

	cutoff := now.Add(-24 * time.Hour)
	for i := range snapshot.Goals.Goals {
		goal := &snapshot.Goals.Goals[i]
		if goal.Status != model.GoalStatusCompleted || goal.CompletedAt == nil {
			continue
		}
		if goal.CompletedAt.Before(cutoff) {
			continue
		}
		insights = append(insights, model.Insight{
			Type:        model.InsightTypeAchievement,
			Category:    model.CategoryGoal,
			Title:       fmt.Sprintf("Goal completed: %s", goal.Title),
			Description: fmt.Sprintf("You finished %q. Take a moment before picking the next one.", goal.Title),
			Urgency:     0.2,
			Impact:      0.5,
			Confidence:  1.0,
			Actionable:  false,
			Params:      map[string]string{"goal": goal.ID},
		})
	}

	return insights
}

// milestoneFor returns the milestone a streak sits exactly on, 0 otherwise.
func (g *Generator) milestoneFor(streak int) int {
	for _, milestone := range g.settings.StreakMilestones {
		if streak == milestone {
			return milestone
		}
	}
	return 0
}

// milestoneDescription keeps the habit-formation framing for the two shipped
// milestones and stays generic for custom ones.
func milestoneDescription(habitName string, milestone int) string {
	switch milestone {
	case 21:
		return fmt.Sprintf("Three weeks of %q - the habit is establishing itself.", habitName)
	case 66:
		return fmt.Sprintf("66 days of %q - at this point the habit is close to automatic.", habitName)
	default:
		return fmt.Sprintf("%d straight days of %q.", milestone, habitName)
	}
}
