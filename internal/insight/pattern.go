package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/lifeprism/lifeprism/internal/model"
)

// emotionSpendSpikeFactor is how far recent spending must exceed the window
// average before the low-mood spending detector fires.
const emotionSpendSpikeFactor = 1.3

// lowMoodThreshold is the average emotion score below which recent mood
// counts as low.
const lowMoodThreshold = -0.2

// patternInsights surfaces discovered correlations that are at least weak
// and significant, plus a specialized low-mood spending spike check.
func (g *Generator) patternInsights(snapshot *model.Snapshot, correlations []model.Correlation, now time.Time) []model.Insight {
	var insights []model.Insight

	for i := range correlations {
		corr := &correlations[i]
		strength := corr.Strength()
		if strength == model.StrengthNone || !corr.IsSignificant() {
			continue
		}

		var impact float64
		switch strength {
		case model.StrengthStrong:
			impact = 0.8
		case model.StrengthModerate:
			impact = 0.6
		default:
			impact = 0.4
		}

		confidence := 0.5
		if corr.IsSignificant() {
			confidence += 0.3
		}

		insights = append(insights, model.Insight{
			Type:        model.InsightTypePattern,
			Category:    patternCategory(corr),
			Title:       fmt.Sprintf("Pattern: %s and %s are linked", dimensionWord(corr.DimensionA), dimensionWord(corr.DimensionB)),
			Description: corr.Description,
			Urgency:     0.3,
			Impact:      impact,
			Confidence:  confidence,
			Actionable:  true,
			Actions: []model.SuggestedAction{
				{
					Action:   "Review the evidence behind this pattern",
					Type:     model.ActionReviewPattern,
					Params:   model.ReviewPatternParams{DimensionA: corr.DimensionA, DimensionB: corr.DimensionB},
					Priority: 1,
				},
			},
		})
	}

	if spike, recent, average := g.lowMoodSpendingSpike(snapshot, now); spike {
		insights = append(insights, model.Insight{
			Type:     model.InsightTypePattern,
			Category: model.CategoryFinancial,
			Title:    "Spending is up while mood is down",
			Description: fmt.Sprintf(
				"Your average spend over the last 3 days (%.2f/day) is well above your recent norm (%.2f/day), and your mood has been low.",
				recent, average),
			Urgency:    0.6,
			Impact:     0.7,
			Confidence: 0.7,
			Actionable: true,
			Actions: []model.SuggestedAction{
				{
					Action:   "Review the last few days of purchases",
					Type:     model.ActionReviewBudget,
					Params:   model.ReviewBudgetParams{Category: ""},
					Priority: 1,
				},
			},
		})
	}

	return insights
}

// lowMoodSpendingSpike fires when average emotion is low and the most recent
// 3-day spend rate exceeds the whole-window rate by the spike factor.
func (g *Generator) lowMoodSpendingSpike(snapshot *model.Snapshot, now time.Time) (bool, float64, float64) {
	if snapshot.Emotions.Average >= lowMoodThreshold || len(snapshot.Finances.Records) == 0 {
		return false, 0, 0
	}

	windowDays := g.settings.RecentDays
	if windowDays <= 0 {
		return false, 0, 0
	}

	cutoff := now.AddDate(0, 0, -3)
	var recentSpend, totalSpend float64
	for i := range snapshot.Finances.Records {
		r := &snapshot.Finances.Records[i]
		if r.Amount <= 0 {
			continue
		}
		totalSpend += r.Amount
		if r.Date.After(cutoff) {
			recentSpend += r.Amount
		}
	}

	recentRate := recentSpend / 3.0
	windowRate := totalSpend / float64(windowDays)
	if windowRate <= 0 {
		return false, 0, 0
	}

	return recentRate > emotionSpendSpikeFactor*windowRate, recentRate, windowRate
}

func patternCategory(corr *model.Correlation) model.InsightCategory {
	pair := corr.DimensionA + " " + corr.DimensionB
	switch {
	case strings.Contains(pair, "financial"):
		return model.CategoryFinancial
	case strings.Contains(pair, "goal"):
		return model.CategoryGoal
	case strings.Contains(pair, "habit"):
		return model.CategoryHabit
	default:
		return model.CategoryGeneral
	}
}

var dimensionWords = map[string]string{
	"emotion.score":      "mood",
	"financial.spending": "spending",
	"habit.exercise":     "exercise",
	"habit.study":        "study time",
	"goal.progress":      "goal progress",
}

func dimensionWord(dimension string) string {
	if word, ok := dimensionWords[dimension]; ok {
		return word
	}
	if i := strings.IndexByte(dimension, '.'); i >= 0 {
		return dimension[i+1:]
	}
	return dimension
}
