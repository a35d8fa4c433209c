// Package insight turns a snapshot and its correlations into a ranked list
// of actionable findings.
package insight

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/model"
)

// Generator implements service.InsightGenerator. Detectors are pure
// functions over the snapshot; a sparse snapshot produces a short (possibly
// empty) list, never an error.
type Generator struct {
	settings config.Settings
	now      func() time.Time
}

// NewGenerator creates a Generator with the given settings.
func NewGenerator(settings config.Settings) *Generator {
	return &Generator{
		settings: settings,
		now:      time.Now,
	}
}

// Generate runs every detector and returns the findings ordered by overall
// score, descending. Ties keep detector emission order: budget, deadline,
// pattern, recommendation, achievement.
func (g *Generator) Generate(_ context.Context, snapshot *model.Snapshot, correlations []model.Correlation) []model.Insight {
	if snapshot == nil {
		return []model.Insight{}
	}
	now := g.now()

	insights := make(model.Insights, 0, 8)
	insights = append(insights, g.budgetWarnings(snapshot)...)
	insights = append(insights, g.deadlineReminders(snapshot, now)...)
	insights = append(insights, g.patternInsights(snapshot, correlations, now)...)
	insights = append(insights, g.recommendations(snapshot, now)...)
	insights = append(insights, g.achievements(snapshot, now)...)

	userID := ""
	if snapshot.User != nil {
		userID = snapshot.User.ID
	}
	for i := range insights {
		insights[i].ID = uuid.New().String()
		insights[i].UserID = userID
		insights[i].GeneratedAt = now
		insights[i].Status = model.StatusNew
		insights[i].Priority = priorityFor(insights[i].Urgency, insights[i].Impact)
	}

	sort.Stable(insights)

	slog.Debug("insights generated", "user", userID, "count", len(insights))
	return insights
}
