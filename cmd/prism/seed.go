package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/storage"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo data",
		Long: `Generate two months of plausible demo data: goals with progress history,
habits with completions, transactions, mood readings and calendar events.
The data deliberately contains discoverable correlations, so analyze and
insights have something to find.`,
		RunE: runSeed,
	}

	cmd.Flags().Int("days", 60, "How many days of history to generate")
	cmd.Flags().Int64("rand-seed", 42, "Random seed, fixed for reproducible demos")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	days, _ := cmd.Flags().GetInt("days")
	randSeed, _ := cmd.Flags().GetInt64("rand-seed")
	ctx := cmd.Context()
	userID := currentUser()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info("🌱 Seeding demo data", "user", userID, "days", days)
	rng := rand.New(rand.NewSource(randSeed)) // #nosec G404 -- demo data only

	if err := store.SaveUser(ctx, &model.User{ID: userID, Name: "Demo User", Timezone: "UTC"}); err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	now := time.Now().UTC()
	if err := seedGoals(cmd, store, userID, now, days); err != nil {
		return err
	}

	habits, err := seedHabits(cmd, store, userID)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(days,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Generating daily history..."),
	)

	var records []model.FinancialRecord
	for i := days; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)

		// Mood swings over the window; exercise days are noticeably better.
		exercised := rng.Float64() < 0.5
		mood := 0.5*rng.Float64() - 0.4
		if exercised {
			mood += 0.5
		}
		emotion := model.EmotionRecord{
			ID:         uuid.New().String(),
			UserID:     userID,
			RecordedAt: day.Add(20 * time.Hour),
			Score:      clampScore(mood + 0.1*rng.NormFloat64()),
		}
		if emotion.Score < -0.3 {
			emotion.Triggers = []string{"work"}
		}
		if err := store.SaveEmotionRecord(ctx, &emotion); err != nil {
			return fmt.Errorf("failed to seed emotion: %w", err)
		}

		if exercised {
			err := store.RecordCompletion(ctx, userID, model.HabitCompletion{
				HabitID:     habits[0].ID,
				CompletedAt: day.Add(7 * time.Hour),
			})
			if err != nil {
				return fmt.Errorf("failed to seed completion: %w", err)
			}
		}
		if rng.Float64() < 0.6 {
			err := store.RecordCompletion(ctx, userID, model.HabitCompletion{
				HabitID:     habits[1].ID,
				CompletedAt: day.Add(21 * time.Hour),
			})
			if err != nil {
				return fmt.Errorf("failed to seed completion: %w", err)
			}
		}

		// Spending runs higher on low-mood days.
		spend := 30 + 20*rng.Float64() - 40*emotion.Score
		record := model.FinancialRecord{
			ID:       uuid.New().String(),
			UserID:   userID,
			Date:     day.Add(13 * time.Hour),
			Amount:   spend,
			Category: pickCategory(rng),
			Merchant: pickMerchant(rng),
		}
		record.Hash = record.GenerateHash()
		records = append(records, record)

		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	inserted, err := store.SaveFinancialRecords(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to seed financial records: %w", err)
	}

	if err := seedBudget(cmd, store, userID, now); err != nil {
		return err
	}
	if err := seedEvents(cmd, store, userID, now); err != nil {
		return err
	}

	slog.Info("✅ Demo data ready",
		"transactions", inserted,
		"days", days)
	slog.Info("Try: prism snapshot, then prism analyze --save, then prism insights")

	return nil
}

func seedGoals(cmd *cobra.Command, store *storage.SQLiteStorage, userID string, now time.Time, days int) error {
	ctx := cmd.Context()
	deadline := now.AddDate(0, 0, 5)
	farDeadline := now.AddDate(0, 2, 0)
	goals := []model.Goal{
		{
			ID:        "goal-piano",
			UserID:    userID,
			Title:     "Learn 10 piano pieces",
			Category:  "learning",
			Status:    model.GoalStatusActive,
			Progress:  0.35,
			StartDate: now.AddDate(0, 0, -days),
			Deadline:  &deadline,
		},
		{
			ID:        "goal-10k",
			UserID:    userID,
			Title:     "Run a 10k",
			Category:  "health",
			Status:    model.GoalStatusActive,
			Progress:  0.6,
			StartDate: now.AddDate(0, 0, -days),
			Deadline:  &farDeadline,
		},
		{
			ID:        "goal-read",
			UserID:    userID,
			Title:     "Read 12 books",
			Category:  "learning",
			Status:    model.GoalStatusCompleted,
			Progress:  1.0,
			StartDate: now.AddDate(0, -6, 0),
		},
	}
	for i := range goals {
		if err := store.SaveGoal(ctx, &goals[i]); err != nil {
			return fmt.Errorf("failed to seed goal: %w", err)
		}
	}

	// Steady progress history for the active goals.
	for i := days; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)
		fraction := float64(days-i) / float64(days)
		for _, g := range []struct {
			id    string
			final float64
		}{
			{"goal-piano", 0.35},
			{"goal-10k", 0.6},
		} {
			err := store.RecordGoalProgress(cmd.Context(), userID, model.GoalProgress{
				GoalID:   g.id,
				Date:     day,
				Progress: g.final * fraction,
			})
			if err != nil {
				return fmt.Errorf("failed to seed goal progress: %w", err)
			}
		}
	}
	return nil
}

func seedHabits(cmd *cobra.Command, store *storage.SQLiteStorage, userID string) ([]model.Habit, error) {
	habits := []model.Habit{
		{ID: "habit-run", UserID: userID, Name: "Morning run", Kind: model.HabitKindExercise, TargetPerWeek: 4, Active: true},
		{ID: "habit-study", UserID: userID, Name: "Evening study", Kind: model.HabitKindStudy, TargetPerWeek: 5, Active: true},
		{ID: "habit-sleep", UserID: userID, Name: "In bed by 23:00", Kind: model.HabitKindSleep, TargetPerWeek: 7, Active: false},
	}
	for i := range habits {
		if err := store.SaveHabit(cmd.Context(), &habits[i]); err != nil {
			return nil, fmt.Errorf("failed to seed habit: %w", err)
		}
	}
	return habits, nil
}

func seedBudget(cmd *cobra.Command, store *storage.SQLiteStorage, userID string, now time.Time) error {
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	budget := &model.Budget{
		ID:             uuid.New().String(),
		UserID:         userID,
		Month:          month,
		AlertThreshold: 0.8,
		CategoryLimits: map[string]float64{
			"food":      450,
			"transport": 120,
			"shopping":  200,
		},
	}
	if err := store.SaveBudget(cmd.Context(), budget); err != nil {
		return fmt.Errorf("failed to seed budget: %w", err)
	}
	return nil
}

func seedEvents(cmd *cobra.Command, store *storage.SQLiteStorage, userID string, now time.Time) error {
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	events := []model.Event{
		{
			ID:     uuid.New().String(),
			UserID: userID,
			Title:  "Team planning",
			Start:  tomorrow.Add(9 * time.Hour),
			End:    tomorrow.Add(10 * time.Hour),
		},
		{
			ID:     uuid.New().String(),
			UserID: userID,
			Title:  "Dentist",
			Start:  tomorrow.Add(9*time.Hour + 30*time.Minute),
			End:    tomorrow.Add(11 * time.Hour),
		},
		{
			ID:     uuid.New().String(),
			UserID: userID,
			Title:  "Piano lesson",
			Start:  now.AddDate(0, 0, 3).Add(18 * time.Hour),
			End:    now.AddDate(0, 0, 3).Add(19 * time.Hour),
		},
	}
	for i := range events {
		if err := store.SaveEvent(cmd.Context(), &events[i]); err != nil {
			return fmt.Errorf("failed to seed event: %w", err)
		}
	}
	return nil
}

func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func pickCategory(rng *rand.Rand) string {
	categories := []string{"food", "food", "transport", "shopping", "entertainment"}
	return categories[rng.Intn(len(categories))]
}

func pickMerchant(rng *rand.Rand) string {
	merchants := []string{"Corner Cafe", "City Grocer", "Metro", "Book Nook", "Stream Co"}
	return merchants[rng.Intn(len(merchants))]
}
