package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// recommendations covers habit optimization, goal pacing and schedule
// conflicts. Each sub-detector no-ops when its data is absent.
func (g *Generator) recommendations(snapshot *model.Snapshot, now time.Time) []model.Insight {
	var insights []model.Insight
	insights = append(insights, g.habitOptimizations(snapshot)...)
	insights = append(insights, g.goalPacing(snapshot, now)...)
	insights = append(insights, g.scheduleConflicts(snapshot)...)
	return insights
}

// habitOptimizations suggests easier targets or a reminder for habits that
// keep missing despite a real attempt history.
func (g *Generator) habitOptimizations(snapshot *model.Snapshot) []model.Insight {
	var insights []model.Insight
	for i := range snapshot.Habits.Habits {
		habit := &snapshot.Habits.Habits[i]
		if !habit.Active {
			continue
		}
		stats, ok := snapshot.Habits.Stats[habit.ID]
		if !ok || stats.SuccessRate >= 0.5 || stats.TotalCompletions < 7 {
			continue
		}

		suggested := int(math.Max(1, math.Round(stats.SuccessRate*float64(habit.TargetPerWeek))))
		actions := []model.SuggestedAction{
			{
				Action:   fmt.Sprintf("Lower %q to %d times a week", habit.Name, suggested),
				Type:     model.ActionLowerTarget,
				Params:   model.LowerTargetParams{HabitID: habit.ID, SuggestedTarget: suggested},
				Priority: 1,
			},
		}
		if stats.BestHour >= 0 {
			actions = append(actions, model.SuggestedAction{
				Action:   fmt.Sprintf("Set a reminder around %02d:00, when %q usually happens", stats.BestHour, habit.Name),
				Type:     model.ActionSetReminder,
				Params:   model.SetReminderParams{HabitID: habit.ID, Hour: stats.BestHour},
				Priority: 2,
			})
		}

		insights = append(insights, model.Insight{
			Type:     model.InsightTypeRecommendation,
			Category: model.CategoryHabit,
			Title:    fmt.Sprintf("%q is not sticking", habit.Name),
			Description: fmt.Sprintf(
				"You complete %q about %.0f%% of the time. A smaller target or a well-timed reminder usually helps.",
				habit.Name, stats.SuccessRate*100),
			Urgency:    0.3,
			Impact:     0.5,
			Confidence: 0.7,
			Actionable: true,
			Actions:    actions,
			Params:     map[string]string{"habit": habit.ID},
		})
	}
	return insights
}

// goalPacing flags active goals lagging more than 10 points behind the
// linear pace to their deadline.
func (g *Generator) goalPacing(snapshot *model.Snapshot, now time.Time) []model.Insight {
	var insights []model.Insight
	for i := range snapshot.Goals.Goals {
		goal := &snapshot.Goals.Goals[i]
		if !goal.IsActive() {
			continue
		}
		expected, ok := goal.ExpectedProgress(now)
		if !ok || goal.Progress >= expected-0.1 {
			continue
		}
		daysLeft, ok := goal.DaysUntilDeadline(now)
		if !ok || daysLeft <= 0 {
			continue
		}

		required := (1.0 - goal.Progress) / float64(daysLeft)
		insights = append(insights, model.Insight{
			Type:     model.InsightTypeRecommendation,
			Category: model.CategoryGoal,
			Title:    fmt.Sprintf("%q is behind pace", goal.Title),
			Description: fmt.Sprintf(
				"Progress is %.0f%% against an expected %.0f%%. Finishing on time needs about %.1f%% per day.",
				goal.Progress*100, expected*100, required*100),
			Urgency:    0.4,
			Impact:     0.6,
			Confidence: 0.7,
			Actionable: true,
			Actions: []model.SuggestedAction{
				{
					Action:   fmt.Sprintf("Commit to %.1f%% progress per day on %q", required*100, goal.Title),
					Type:     model.ActionSetDailyPace,
					Params:   model.SetDailyPaceParams{GoalID: goal.ID, RequiredRate: required},
					Priority: 1,
				},
			},
			Params: map[string]string{"goal": goal.ID},
		})
	}
	return insights
}

// scheduleConflicts suggests rescheduling one side of each detected overlap.
func (g *Generator) scheduleConflicts(snapshot *model.Snapshot) []model.Insight {
	var insights []model.Insight
	for _, conflict := range snapshot.Events.Conflicts {
		insights = append(insights, model.Insight{
			Type:     model.InsightTypeRecommendation,
			Category: model.CategoryTime,
			Title:    "Two events overlap",
			Description: fmt.Sprintf(
				"Events %s and %s overlap between %s and %s.",
				conflict.EventID, conflict.OtherEventID,
				conflict.OverlapStart.Format("Mon 15:04"), conflict.OverlapEnd.Format("15:04")),
			Urgency:    0.5,
			Impact:     0.5,
			Confidence: 0.9,
			Actionable: true,
			Actions: []model.SuggestedAction{
				{
					Action:   "Reschedule one of the overlapping events",
					Type:     model.ActionRescheduleEvent,
					Params:   model.RescheduleEventParams{EventID: conflict.EventID, ConflictingEventID: conflict.OtherEventID},
					Priority: 1,
				},
			},
		})
	}
	return insights
}
