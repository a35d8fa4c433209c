package correlation

import (
	"context"
	"sort"
	"time"

	"github.com/lifeprism/lifeprism/internal/common"
	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/service"
)

// Dimension identifiers the analyzer understands.
const (
	DimEmotionScore      = "emotion.score"
	DimFinancialSpending = "financial.spending"
	DimHabitExercise     = "habit.exercise"
	DimHabitStudy        = "habit.study"
	DimGoalProgress      = "goal.progress"
)

// dimensionLabels maps identifiers to the words used in descriptions.
var dimensionLabels = map[string]string{
	DimEmotionScore:      "mood",
	DimFinancialSpending: "spending",
	DimHabitExercise:     "exercise",
	DimHabitStudy:        "study time",
	DimGoalProgress:      "goal progress",
}

// pairedSample is one day's reading in both dimensions.
type pairedSample struct {
	date time.Time
	a    float64
	b    float64
}

// exampleOrder ranks samples for evidence selection; the first few samples
// after sorting become the correlation's examples.
type exampleOrder func(samples []pairedSample) func(i, j int) bool

// pairSource fetches the daily-bucketed joined series for one dimension pair.
type pairSource struct {
	fetch      func(ctx context.Context, userID string, rng service.DateRange) ([]pairedSample, error)
	order      exampleOrder
	dimensionA string
	dimensionB string
}

func lowestA(samples []pairedSample) func(i, j int) bool {
	return func(i, j int) bool { return samples[i].a < samples[j].a }
}

func lowestB(samples []pairedSample) func(i, j int) bool {
	return func(i, j int) bool { return samples[i].b < samples[j].b }
}

func highestB(samples []pairedSample) func(i, j int) bool {
	return func(i, j int) bool { return samples[i].b > samples[j].b }
}

// builtinSources wires the reference dimension pairs against the
// repositories. Days are keyed in UTC; a day enters the series when its
// primary dimension has at least one reading, and the activity side defaults
// to zero because no record genuinely means no activity that day.
func builtinSources(repos service.Repositories) []pairSource {
	return []pairSource{
		{
			dimensionA: DimEmotionScore,
			dimensionB: DimFinancialSpending,
			order:      lowestA, // worst-mood days are the interesting evidence
			fetch: func(ctx context.Context, userID string, rng service.DateRange) ([]pairedSample, error) {
				moods, err := dailyEmotionMeans(ctx, repos.Emotions, userID, rng)
				if err != nil {
					return nil, err
				}
				spend, err := dailySpending(ctx, repos.Finances, userID, rng)
				if err != nil {
					return nil, err
				}
				return joinOnPrimary(moods, spend), nil
			},
		},
		{
			dimensionA: DimHabitExercise,
			dimensionB: DimEmotionScore,
			order:      lowestB,
			fetch: func(ctx context.Context, userID string, rng service.DateRange) ([]pairedSample, error) {
				moods, err := dailyEmotionMeans(ctx, repos.Emotions, userID, rng)
				if err != nil {
					return nil, err
				}
				exercise, err := dailyHabitCounts(ctx, repos.Habits, userID, model.HabitKindExercise, rng)
				if err != nil {
					return nil, err
				}
				// Mood is still the primary dimension; exercise defaults to 0.
				samples := joinOnPrimary(moods, exercise)
				for i := range samples {
					samples[i].a, samples[i].b = samples[i].b, samples[i].a
				}
				return samples, nil
			},
		},
		{
			dimensionA: DimHabitStudy,
			dimensionB: DimGoalProgress,
			order:      highestB,
			fetch: func(ctx context.Context, userID string, rng service.DateRange) ([]pairedSample, error) {
				gains, err := dailyProgressGains(ctx, repos.Goals, userID, rng)
				if err != nil {
					return nil, err
				}
				study, err := dailyHabitCounts(ctx, repos.Habits, userID, model.HabitKindStudy, rng)
				if err != nil {
					return nil, err
				}
				samples := joinOnPrimary(gains, study)
				for i := range samples {
					samples[i].a, samples[i].b = samples[i].b, samples[i].a
				}
				return samples, nil
			},
		},
	}
}

type dailySeries map[string]float64

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// joinOnPrimary builds one sample per day present in the primary series; the
// secondary value defaults to zero when that day has no reading.
func joinOnPrimary(primary, secondary dailySeries) []pairedSample {
	keys := make([]string, 0, len(primary))
	for key := range primary {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	samples := make([]pairedSample, 0, len(keys))
	for _, key := range keys {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		samples = append(samples, pairedSample{
			date: date,
			a:    primary[key],
			b:    secondary[key],
		})
	}
	return samples
}

func dailyEmotionMeans(ctx context.Context, repo service.EmotionRepository, userID string, rng service.DateRange) (dailySeries, error) {
	days := int(rng.End.Sub(rng.Start).Hours() / 24)
	emotions, err := repo.FetchRecentEmotions(ctx, userID, days)
	if err != nil {
		return nil, common.NewRepositoryError("emotions", err)
	}

	sums := make(dailySeries)
	counts := make(map[string]int)
	for i := range emotions {
		key := dayKey(emotions[i].RecordedAt)
		sums[key] += emotions[i].Score
		counts[key]++
	}
	for key := range sums {
		sums[key] /= float64(counts[key])
	}
	return sums, nil
}

func dailySpending(ctx context.Context, repo service.FinanceRepository, userID string, rng service.DateRange) (dailySeries, error) {
	days := int(rng.End.Sub(rng.Start).Hours() / 24)
	records, err := repo.FetchRecentFinancials(ctx, userID, days)
	if err != nil {
		return nil, common.NewRepositoryError("finances", err)
	}

	series := make(dailySeries)
	for i := range records {
		if records[i].Amount <= 0 {
			continue
		}
		series[dayKey(records[i].Date)] += records[i].Amount
	}
	return series, nil
}

func dailyHabitCounts(ctx context.Context, repo service.HabitRepository, userID string, kind model.HabitKind, rng service.DateRange) (dailySeries, error) {
	habits, err := repo.FetchHabits(ctx, userID)
	if err != nil {
		return nil, common.NewRepositoryError("habits", err)
	}
	wanted := make(map[string]bool)
	for i := range habits {
		if habits[i].Kind == kind {
			wanted[habits[i].ID] = true
		}
	}
	if len(wanted) == 0 {
		return dailySeries{}, nil
	}

	completions, err := repo.FetchCompletions(ctx, userID, rng)
	if err != nil {
		return nil, common.NewRepositoryError("habits", err)
	}

	series := make(dailySeries)
	for i := range completions {
		if wanted[completions[i].HabitID] {
			series[dayKey(completions[i].CompletedAt)]++
		}
	}
	return series, nil
}

// dailyProgressGains sums positive day-over-day progress deltas per goal.
func dailyProgressGains(ctx context.Context, repo service.GoalRepository, userID string, rng service.DateRange) (dailySeries, error) {
	history, err := repo.FetchProgressHistory(ctx, userID, rng)
	if err != nil {
		return nil, common.NewRepositoryError("goals", err)
	}

	byGoal := make(map[string][]model.GoalProgress)
	for i := range history {
		byGoal[history[i].GoalID] = append(byGoal[history[i].GoalID], history[i])
	}

	series := make(dailySeries)
	for _, readings := range byGoal {
		sort.Slice(readings, func(i, j int) bool {
			return readings[i].Date.Before(readings[j].Date)
		})
		for i := 1; i < len(readings); i++ {
			gain := readings[i].Progress - readings[i-1].Progress
			if gain > 0 {
				series[dayKey(readings[i].Date)] += gain
			}
		}
	}
	return series, nil
}
