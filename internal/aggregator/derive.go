package aggregator

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/lifeprism/lifeprism/internal/model"
)

// trendSlopeDeadband is the regression slope (score units per day) inside
// which recent emotion is classified as stable.
const trendSlopeDeadband = 0.05

const dayKeyFormat = "2006-01-02"

func buildGoalsView(goals []model.Goal, progress []model.GoalProgress) model.GoalsView {
	view := model.GoalsView{Goals: goals, RecentProgress: progress}
	for i := range goals {
		switch goals[i].Status {
		case model.GoalStatusActive:
			view.Active++
		case model.GoalStatusCompleted:
			view.Completed++
		}
	}
	if len(goals) > 0 {
		view.CompletionRate = float64(view.Completed) / float64(len(goals))
	}
	return view
}

func buildHabitsView(habits []model.Habit, today, window []model.HabitCompletion, lookbackDays int, now time.Time) model.HabitsView {
	stats := make(map[string]model.HabitStats, len(habits))

	byHabit := make(map[string][]model.HabitCompletion)
	for _, c := range window {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}

	var rateSum float64
	var rated int
	for i := range habits {
		h := &habits[i]
		s := computeHabitStats(h, byHabit[h.ID], lookbackDays, now)
		stats[h.ID] = s
		if h.Active {
			rateSum += s.SuccessRate
			rated++
		}
	}

	view := model.HabitsView{
		Habits:           habits,
		TodayCompletions: today,
		Stats:            stats,
	}
	if rated > 0 {
		view.SuccessRate = rateSum / float64(rated)
	}
	return view
}

// computeHabitStats derives streaks, success rate and the best completion
// hour from the completion history inside the lookback window.
func computeHabitStats(habit *model.Habit, completions []model.HabitCompletion, lookbackDays int, now time.Time) model.HabitStats {
	s := model.HabitStats{HabitID: habit.ID, BestHour: -1}
	if len(completions) == 0 {
		return s
	}

	days := make(map[string]bool, len(completions))
	hourCounts := make(map[int]int)
	for _, c := range completions {
		days[c.CompletedAt.Format(dayKeyFormat)] = true
		hourCounts[c.CompletedAt.Hour()]++
	}
	s.TotalCompletions = len(completions)

	// Current streak counts back from today, or from yesterday when today
	// has not been completed yet.
	cursor := now
	if !days[cursor.Format(dayKeyFormat)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[cursor.Format(dayKeyFormat)] {
		s.Streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Best streak over the whole window.
	run := 0
	cursor = now.AddDate(0, 0, -lookbackDays)
	for !cursor.After(now) {
		if days[cursor.Format(dayKeyFormat)] {
			run++
			if run > s.BestStreak {
				s.BestStreak = run
			}
		} else {
			run = 0
		}
		cursor = cursor.AddDate(0, 0, 1)
	}

	// Success rate against the weekly target, clamped to 1: completing more
	// often than the target is not penalized or rewarded.
	if habit.TargetPerWeek > 0 && lookbackDays > 0 {
		expected := float64(lookbackDays) * float64(habit.TargetPerWeek) / 7.0
		if expected > 0 {
			s.SuccessRate = float64(len(days)) / expected
			if s.SuccessRate > 1 {
				s.SuccessRate = 1
			}
		}
	}

	best, bestCount := -1, 0
	for hour := 0; hour < 24; hour++ {
		if hourCounts[hour] > bestCount {
			best, bestCount = hour, hourCounts[hour]
		}
	}
	s.BestHour = best

	return s
}

func buildFinancesView(budget *model.Budget, records []model.FinancialRecord, categorySpend map[string]float64, defaultThreshold float64) model.FinancesView {
	view := model.FinancesView{
		Budget:        budget,
		Records:       records,
		CategorySpend: categorySpend,
	}
	for _, amount := range categorySpend {
		view.TotalSpend += amount
	}
	if budget == nil {
		return view
	}

	threshold := budget.AlertThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	categories := make([]string, 0, len(budget.CategoryLimits))
	for category := range budget.CategoryLimits {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		limit := budget.CategoryLimits[category]
		if limit <= 0 {
			continue
		}
		spent := categorySpend[category]
		usage := spent / limit
		if usage >= threshold {
			view.Alerts = append(view.Alerts, model.BudgetAlert{
				Category:  category,
				Limit:     limit,
				Spent:     spent,
				UsageRate: usage,
			})
		}
	}
	return view
}

func buildEmotionsView(emotions []model.EmotionRecord, average float64) model.EmotionsView {
	return model.EmotionsView{
		Recent:   emotions,
		Average:  average,
		Triggers: detectTriggers(emotions),
		Trend:    classifyTrend(emotions),
	}
}

// detectTriggers surfaces triggers that recur across recent records.
func detectTriggers(emotions []model.EmotionRecord) []string {
	counts := make(map[string]int)
	for i := range emotions {
		for _, trigger := range emotions[i].Triggers {
			counts[trigger]++
		}
	}

	var recurring []string
	for trigger, n := range counts {
		if n >= 2 {
			recurring = append(recurring, trigger)
		}
	}
	sort.Strings(recurring)
	return recurring
}

// classifyTrend fits score against days-since-first-record and classifies
// the slope with a deadband.
func classifyTrend(emotions []model.EmotionRecord) model.EmotionTrend {
	if len(emotions) < 3 {
		return model.EmotionTrendStable
	}

	sorted := make([]model.EmotionRecord, len(emotions))
	copy(sorted, emotions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
	})

	origin := sorted[0].RecordedAt
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, e := range sorted {
		xs[i] = e.RecordedAt.Sub(origin).Hours() / 24.0
		ys[i] = e.Score
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	switch {
	case slope > trendSlopeDeadband:
		return model.EmotionTrendImproving
	case slope < -trendSlopeDeadband:
		return model.EmotionTrendDeclining
	default:
		return model.EmotionTrendStable
	}
}

func buildEventsView(upcoming, today []model.Event) model.EventsView {
	return model.EventsView{
		Upcoming:  upcoming,
		Today:     today,
		Conflicts: detectConflicts(upcoming),
	}
}

// detectConflicts scans event pairs for time overlap. Quadratic over the
// upcoming window, which stays small in practice.
func detectConflicts(events []model.Event) []model.EventConflict {
	var conflicts []model.EventConflict
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			a, b := &events[i], &events[j]
			if !a.Overlaps(b) {
				continue
			}
			start := a.Start
			if b.Start.After(start) {
				start = b.Start
			}
			end := a.End
			if b.End.Before(end) {
				end = b.End
			}
			conflicts = append(conflicts, model.EventConflict{
				EventID:      a.ID,
				OtherEventID: b.ID,
				OverlapStart: start,
				OverlapEnd:   end,
			})
		}
	}
	return conflicts
}
