package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lifeprism/lifeprism/internal/config"
	"github.com/lifeprism/lifeprism/internal/correlation"
	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/storage"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Discover correlations between life dimensions",
		Long: `Run correlation analysis over the tracked dimension pairs, such as mood
versus spending or exercise versus mood. Only statistically significant
relationships with enough samples are reported.`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("pair", "", "analyze one pair only, e.g. emotion.score:financial.spending")
	cmd.Flags().Bool("save", false, "Persist discovered correlations")
	cmd.Flags().Bool("verify", false, "Re-verify stored correlations instead of discovering")
	cmd.Flags().Bool("json", false, "Print results as JSON")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	pair, _ := cmd.Flags().GetString("pair")
	save, _ := cmd.Flags().GetBool("save")
	verify, _ := cmd.Flags().GetBool("verify")
	asJSON, _ := cmd.Flags().GetBool("json")
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

	analyzer := correlation.NewAnalyzer(buildRepositories(store), settings)

	if verify {
		return runVerify(ctx, userID, analyzer, store)
	}

	var found []model.Correlation
	if pair != "" {
		dims := strings.SplitN(pair, ":", 2)
		if len(dims) != 2 {
			return fmt.Errorf("pair must be dimensionA:dimensionB, got %q", pair)
		}
		corr, err := analyzer.AnalyzeOne(ctx, userID, dims[0], dims[1])
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if corr != nil {
			found = append(found, *corr)
		}
	} else {
		found, err = analyzer.AnalyzeAll(ctx, userID)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	if save {
		for i := range found {
			if err := store.SaveCorrelation(ctx, &found[i]); err != nil {
				return fmt.Errorf("failed to save correlation: %w", err)
			}
		}
		slog.Info("Saved correlations", "count", len(found))
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	renderCorrelations(found)
	return nil
}

func runVerify(ctx context.Context, userID string, analyzer *correlation.Analyzer, store *storage.SQLiteStorage) error {
	stored, err := store.FetchCorrelations(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load stored correlations: %w", err)
	}
	if len(stored) == 0 {
		slog.Info("No stored correlations to verify")
		return nil
	}

	now := time.Now()
	for i := range stored {
		corr := &stored[i]
		if !corr.IsStale(now) {
			slog.Debug("Correlation still fresh, skipping",
				"pair", corr.DimensionA+":"+corr.DimensionB)
			continue
		}

		ok, err := analyzer.Verify(ctx, corr)
		if err != nil {
			return fmt.Errorf("verification failed for %s:%s: %w",
				corr.DimensionA, corr.DimensionB, err)
		}
		if ok {
			verified := now
			corr.LastVerified = &verified
			if err := store.SaveCorrelation(ctx, corr); err != nil {
				return fmt.Errorf("failed to record verification: %w", err)
			}
		}
		slog.Info("Verified correlation",
			"pair", corr.DimensionA+":"+corr.DimensionB,
			"still_holds", ok)
	}
	return nil
}

func renderCorrelations(found []model.Correlation) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if len(found) == 0 {
		fmt.Println(dimStyle.Render("No significant correlations found. More tracked days help."))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Found %d correlation(s)", len(found))))
	for _, corr := range found {
		coefficient := 0.0
		if corr.Coefficient != nil {
			coefficient = *corr.Coefficient
		}
		fmt.Printf("\n  %s ↔ %s\n", corr.DimensionA, corr.DimensionB)
		fmt.Printf("  r=%.2f (%s, %s), n=%d\n",
			coefficient, corr.Strength(), corr.Direction(), corr.SampleCount)
		fmt.Printf("  %s\n", corr.Description)
		for _, ex := range corr.Examples {
			fmt.Println(dimStyle.Render(fmt.Sprintf("    %s: %.2f / %.2f",
				ex.Date.Format("2006-01-02"), ex.ValueA, ex.ValueB)))
		}
	}
}
