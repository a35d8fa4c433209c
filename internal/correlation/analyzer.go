// Package correlation discovers statistically meaningful relationships
// between pairs of life-domain metrics.
package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// verifyTolerance is how far a freshly computed coefficient may drift from
// the stored one before the correlation is considered no longer valid.
const verifyTolerance = 0.2

// Analyzer implements service.CorrelationAnalyzer. It is stateless beyond
// its configuration and safe to call concurrently.
type Analyzer struct {
	repos    service.Repositories
	sources  []pairSource
	settings config.Settings
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer over the built-in dimension pairs.
func NewAnalyzer(repos service.Repositories, settings config.Settings) *Analyzer {
	return &Analyzer{
		repos:    repos,
		sources:  builtinSources(repos),
		settings: settings,
		now:      time.Now,
	}
}

// AnalyzeAll runs every registered dimension pair and returns the
// correlations that pass the data-sufficiency, strength and significance
// thresholds. Pairs without enough signal contribute nothing; only repository
// failures produce an error.
func (a *Analyzer) AnalyzeAll(ctx context.Context, userID string) ([]model.Correlation, error) {
	var results []model.Correlation
	for i := range a.sources {
		corr, err := a.analyze(ctx, userID, &a.sources[i])
		if err != nil {
			return nil, err
		}
		if corr != nil {
			results = append(results, *corr)
		}
	}
	return results, nil
}

// AnalyzeOne runs a single dimension pair, matched in either orientation.
// Returns (nil, nil) when the pair is unknown or below thresholds.
func (a *Analyzer) AnalyzeOne(ctx context.Context, userID, dimensionA, dimensionB string) (*model.Correlation, error) {
	source := a.findSource(dimensionA, dimensionB)
	if source == nil {
		return nil, nil
	}
	return a.analyze(ctx, userID, source)
}

// Verify re-runs the analysis for a stored correlation's pair and reports
// whether the stored coefficient still holds: the fresh result must itself
// pass every threshold and land within the drift tolerance.
func (a *Analyzer) Verify(ctx context.Context, corr *model.Correlation) (bool, error) {
	if corr == nil || corr.Coefficient == nil {
		return false, nil
	}

	fresh, err := a.AnalyzeOne(ctx, corr.UserID, corr.DimensionA, corr.DimensionB)
	if err != nil {
		return false, err
	}
	if fresh == nil || fresh.Coefficient == nil {
		return false, nil
	}

	return math.Abs(*fresh.Coefficient-*corr.Coefficient) <= verifyTolerance, nil
}

func (a *Analyzer) findSource(dimensionA, dimensionB string) *pairSource {
	for i := range a.sources {
		s := &a.sources[i]
		if (s.dimensionA == dimensionA && s.dimensionB == dimensionB) ||
			(s.dimensionA == dimensionB && s.dimensionB == dimensionA) {
			return s
		}
	}
	return nil
}

func (a *Analyzer) analyze(ctx context.Context, userID string, source *pairSource) (*model.Correlation, error) {
	now := a.now()
	rng := service.DateRange{
		Start: now.AddDate(0, 0, -a.settings.LookbackDays),
		End:   now,
	}

	samples, err := source.fetch(ctx, userID, rng)
	if err != nil {
		return nil, err
	}
	if len(samples) < a.settings.MinSamples {
		slog.Debug("correlation skipped, not enough samples",
			"user", userID,
			"pair", source.dimensionA+"/"+source.dimensionB,
			"samples", len(samples),
			"required", a.settings.MinSamples)
		return nil, nil
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.a
		ys[i] = s.b
	}

	r := pearson(xs, ys)
	p := significance(r, len(samples), a.settings.ExactSignificance)

	if math.Abs(r) < a.settings.MinCoefficient || p >= a.settings.SignificanceLevel {
		slog.Debug("correlation below thresholds",
			"user", userID,
			"pair", source.dimensionA+"/"+source.dimensionB,
			"coefficient", r,
			"p", p)
		return nil, nil
	}

	corr := &model.Correlation{
		ID:           uuid.New().String(),
		UserID:       userID,
		DimensionA:   source.dimensionA,
		DimensionB:   source.dimensionB,
		Coefficient:  &r,
		Significance: &p,
		SampleCount:  len(samples),
		DiscoveredAt: now,
		Examples:     selectExamples(samples, source.order),
	}
	corr.Description = describe(corr)

	slog.Info("correlation discovered",
		"user", userID,
		"pair", source.dimensionA+"/"+source.dimensionB,
		"coefficient", r,
		"p", p,
		"samples", len(samples))

	return corr, nil
}

// selectExamples keeps the most extreme samples by the source's ordering.
func selectExamples(samples []pairedSample, order exampleOrder) []model.CorrelationExample {
	sorted := make([]pairedSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, order(sorted))

	limit := model.MaxCorrelationExamples
	if len(sorted) < limit {
		limit = len(sorted)
	}

	examples := make([]model.CorrelationExample, 0, limit)
	for _, s := range sorted[:limit] {
		examples = append(examples, model.CorrelationExample{
			Date:   s.date,
			ValueA: s.a,
			ValueB: s.b,
		})
	}
	return examples
}

// describe templates a human-readable sentence from the correlation's sign,
// magnitude and dimension labels.
func describe(corr *model.Correlation) string {
	labelA := dimensionLabels[corr.DimensionA]
	if labelA == "" {
		labelA = corr.DimensionA
	}
	labelB := dimensionLabels[corr.DimensionB]
	if labelB == "" {
		labelB = corr.DimensionB
	}

	var link string
	switch corr.Direction() {
	case model.DirectionNegative:
		link = fmt.Sprintf("when your %s is lower, your %s tends to be higher", labelA, labelB)
	case model.DirectionPositive:
		link = fmt.Sprintf("when your %s is higher, your %s tends to be higher too", labelA, labelB)
	default:
		link = fmt.Sprintf("your %s and %s move independently", labelA, labelB)
	}

	return fmt.Sprintf("There is a %s relationship between %s and %s: %s.",
		corr.Strength(), labelA, labelB, link)
}
