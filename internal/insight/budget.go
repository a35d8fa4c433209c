package insight

import (
	"fmt"
	"strings"

	"github.com/lifeprism/lifeprism/internal/model"
)

// budgetWarnings emits one warning per tripped budget alert. The snapshot
// already filtered alerts at the threshold, so every alert becomes an
// insight; urgency scales with how deep into the budget the category is.
func (g *Generator) budgetWarnings(snapshot *model.Snapshot) []model.Insight {
	alerts := snapshot.Finances.Alerts
	if len(alerts) == 0 {
		return nil
	}

	insights := make([]model.Insight, 0, len(alerts))
	for _, alert := range alerts {
		var urgency float64
		switch {
		case alert.UsageRate >= 1.0:
			urgency = 1.0
		case alert.UsageRate >= 0.9:
			urgency = 0.9
		case alert.UsageRate >= 0.8:
			urgency = 0.7
		default:
			urgency = 0.5
		}

		title := fmt.Sprintf("%s budget at %.0f%%", titleCase(alert.Category), alert.UsageRate*100)
		description := fmt.Sprintf(
			"You have spent %.2f of your %.2f %s budget this period.",
			alert.Spent, alert.Limit, alert.Category)
		if alert.UsageRate >= 1.0 {
			title = fmt.Sprintf("%s budget exceeded", titleCase(alert.Category))
		}

		actions := []model.SuggestedAction{
			{
				Action:   fmt.Sprintf("Review recent %s spending", alert.Category),
				Type:     model.ActionReviewBudget,
				Params:   model.ReviewBudgetParams{Category: alert.Category},
				Priority: 1,
			},
		}
		if isFoodCategory(alert.Category) {
			actions = append(actions, model.SuggestedAction{
				Action:   "Plan meals for the week to cut food costs",
				Type:     model.ActionPlanMeals,
				Params:   model.PlanMealsParams{Category: alert.Category, WeeklySpend: alert.Spent / 4},
				Priority: 2,
			})
		}

		insights = append(insights, model.Insight{
			Type:        model.InsightTypeWarning,
			Category:    model.CategoryFinancial,
			Title:       title,
			Description: description,
			Urgency:     urgency,
			Impact:      budgetImpact(alert.UsageRate),
			Confidence:  0.95,
			Actionable:  true,
			Actions:     actions,
			Params:      map[string]string{"category": alert.Category},
		})
	}
	return insights
}

func budgetImpact(usageRate float64) float64 {
	if usageRate >= 1.0 {
		return 0.8
	}
	return 0.6
}

func isFoodCategory(category string) bool {
	switch strings.ToLower(category) {
	case "food", "dining", "groceries", "restaurants":
		return true
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
