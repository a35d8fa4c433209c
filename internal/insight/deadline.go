package insight

import (
	"fmt"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// deadlineReminders warns about active goals whose deadline falls inside the
// reminder window. Urgency grows as the deadline nears; impact is raised for
// goals that are behind.
func (g *Generator) deadlineReminders(snapshot *model.Snapshot, now time.Time) []model.Insight {
	window := g.settings.DeadlineWindowDays

	var insights []model.Insight
	for i := range snapshot.Goals.Goals {
		goal := &snapshot.Goals.Goals[i]
		if !goal.IsActive() {
			continue
		}
		daysLeft, ok := goal.DaysUntilDeadline(now)
		if !ok || daysLeft < 0 || daysLeft > window {
			continue
		}

		urgency := clamp01(1.0 - float64(daysLeft)/float64(window))
		behind := goal.Progress < 0.5
		impact := 0.6
		if behind {
			impact = 0.8
		}

		actions := []model.SuggestedAction{
			{
				Action:   fmt.Sprintf("Plan a focused sprint for %q", goal.Title),
				Type:     model.ActionSprintPlan,
				Params:   model.SprintPlanParams{GoalID: goal.ID, DaysLeft: daysLeft},
				Priority: 1,
			},
		}
		if behind {
			actions = append(actions, model.SuggestedAction{
				Action:   "Extend the deadline or rescope the goal",
				Type:     model.ActionAdjustGoal,
				Params:   model.AdjustGoalParams{GoalID: goal.ID},
				Priority: 2,
			})
		}

		validUntil := *goal.Deadline
		insights = append(insights, model.Insight{
			Type:     model.InsightTypeWarning,
			Category: model.CategoryGoal,
			Title:    fmt.Sprintf("%q is due in %d days", goal.Title, daysLeft),
			Description: fmt.Sprintf(
				"Progress is at %.0f%% with %d days to the deadline.",
				goal.Progress*100, daysLeft),
			Urgency:    urgency,
			Impact:     impact,
			Confidence: 0.9,
			Actionable: true,
			Actions:    actions,
			ValidUntil: &validUntil,
			Params:     map[string]string{"goal": goal.ID},
		})
	}
	return insights
}
