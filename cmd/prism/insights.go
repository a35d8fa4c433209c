package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lifeprism/lifeprism/internal/aggregator"
	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/insight"
	"github.com/lifeprism/lifeprism/internal/model"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate ranked insights from the current snapshot",
		Long: `Run every insight detector over the aggregated snapshot and its stored
correlations: budget warnings, deadline alerts, behavioral patterns,
recommendations and achievements, ranked by overall score.`,
		RunE: runInsights,
	}

	cmd.Flags().Bool("save", false, "Persist generated insights")
	cmd.Flags().Bool("json", false, "Print insights as JSON")
	cmd.Flags().IntP("limit", "n", 0, "Show at most this many insights (0 = all)")

	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")
	ctx := cmd.Context()
	userID := currentUser()

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
	snapshot, err := agg.LoadSnapshot(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	generator := insight.NewGenerator(settings)
	insights := generator.Generate(ctx, snapshot, snapshot.Correlations)

	if save && len(insights) > 0 {
		if err := store.SaveInsights(ctx, insights); err != nil {
			return fmt.Errorf("failed to save insights: %w", err)
		}
		// The snapshot cached before saving no longer reflects stored state.
		agg.Invalidate(userID)
		slog.Info("Saved insights", "count", len(insights))
	}

	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(insights)
	}

	renderInsights(insights)
	return nil
}

func renderInsights(insights []model.Insight) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	typeStyles := map[model.InsightType]lipgloss.Style{
		model.InsightTypeWarning:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.InsightTypePattern:        lipgloss.NewStyle().Foreground(lipgloss.Color("105")),
		model.InsightTypeRecommendation: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		model.InsightTypeAchievement:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.InsightTypeOpportunity:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}

	if len(insights) == 0 {
		fmt.Println(dimStyle.Render("Nothing noteworthy right now."))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("💡 %d insight(s)", len(insights))))
	for _, ins := range insights {
		style, ok := typeStyles[ins.Type]
		if !ok {
			style = dimStyle
		}
		fmt.Printf("\n%s [P%d, score %.2f]\n",
			style.Render(fmt.Sprintf("[%s]", ins.Type)), ins.Priority, ins.OverallScore())
		fmt.Printf("  %s\n", ins.Title)
		if ins.Description != "" {
			fmt.Printf("  %s\n", ins.Description)
		}
		for _, action := range ins.Actions {
			fmt.Println(dimStyle.Render(fmt.Sprintf("    → %s", action.Action)))
		}
	}
}
