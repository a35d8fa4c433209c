package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lifeprism/lifeprism/internal/aggregator"
	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/model"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the aggregated snapshot for a user",
		Long: `Assemble the current snapshot: goals, habits, finances, emotional state
and calendar, combined with derived statistics in one consistent view.`,
		RunE: runSnapshot,
	}

	cmd.Flags().Bool("json", false, "Print the raw snapshot as JSON")

	return cmd
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	settings, err := config.Load()
	if err != nil {
		return err
	}

	agg := aggregator.New(buildRepositories(store), settings)
	snapshot, err := agg.LoadSnapshot(ctx, currentUser())
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	renderSnapshot(snapshot)
	return nil
}

func renderSnapshot(snapshot *model.Snapshot) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	name := "unknown"
	if snapshot.User != nil {
		name = snapshot.User.Name
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("🔮 Snapshot for %s", name)))
	fmt.Println(dimStyle.Render(snapshot.GeneratedAt.Format(time.RFC1123)))
	fmt.Println()

	s := snapshot.Summary
	fmt.Println(headerStyle.Render("Summary"))
	fmt.Printf("  Goals:    %d active, %.0f%% completion rate\n",
		s.ActiveGoals, snapshot.Goals.CompletionRate*100)
	fmt.Printf("  Habits:   %d active, %.0f%% success rate\n",
		s.ActiveHabits, snapshot.Habits.SuccessRate*100)
	fmt.Printf("  Spending: %.2f across %d recent records\n",
		s.TotalSpend, s.RecentRecords)
	fmt.Printf("  Mood:     %.2f average (%s), %d readings\n",
		snapshot.Emotions.Average, snapshot.Emotions.Trend, s.RecentEmotions)
	fmt.Printf("  Calendar: %d upcoming events\n", s.UpcomingEvents)
	fmt.Println()

	if len(snapshot.Finances.Alerts) > 0 {
		fmt.Println(alertStyle.Render("⚠ Budget alerts"))
		for _, alert := range snapshot.Finances.Alerts {
			fmt.Printf("  %s: %.2f of %.2f (%.0f%%)\n",
				alert.Category, alert.Spent, alert.Limit, alert.UsageRate*100)
		}
		fmt.Println()
	}

	if len(snapshot.Events.Conflicts) > 0 {
		fmt.Println(alertStyle.Render("⚠ Schedule conflicts"))
		for _, c := range snapshot.Events.Conflicts {
			fmt.Printf("  %s overlaps %s (%s to %s)\n",
				c.EventID, c.OtherEventID,
				c.OverlapStart.Format("15:04"), c.OverlapEnd.Format("15:04"))
		}
		fmt.Println()
	}

	if len(snapshot.Insights.Urgent) > 0 {
		fmt.Println(headerStyle.Render("Urgent insights"))
		for _, insight := range snapshot.Insights.Urgent {
			fmt.Printf("  [P%d] %s\n", insight.Priority, insight.Title)
		}
	} else if s.PendingInsights == 0 {
		fmt.Println(dimStyle.Render("No pending insights. Run: prism insights"))
	}
}
