package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lifeprism/lifeprism/internal/model"
	"github.com/lifeprism/lifeprism/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported
from your bank. Records already imported are detected by hash and skipped.

Examples:
  # Import single file
  prism import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  prism import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	userID := currentUser()

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("🔮 Importing OFX files...",
		"file_count", len(allFiles),
		"user", userID,
		"dry_run", dryRun)

	parser := ofx.NewParser()
	ctx := cmd.Context()

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Parsing statements..."),
	)

	var allRecords []model.FinancialRecord
	seen := make(map[string]bool)

	for _, filePath := range allFiles {
		f, err := os.Open(filePath) // #nosec G304 -- user-supplied import path
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		records, err := parser.ParseFile(ctx, userID, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		added := 0
		for _, r := range records {
			if !seen[r.Hash] {
				seen[r.Hash] = true
				allRecords = append(allRecords, r)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"records_found", len(records),
			"added", added,
			"duplicates", len(records)-added)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if len(allRecords) == 0 {
		slog.Warn("No records found in any file")
		return nil
	}

	if dryRun {
		slog.Info("🔍 Dry run complete, nothing saved", "records", len(allRecords))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.SaveFinancialRecords(ctx, allRecords)
	if err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	slog.Info("💾 Import complete",
		"parsed", len(allRecords),
		"inserted", inserted,
		"already_stored", len(allRecords)-inserted)

	return nil
}
