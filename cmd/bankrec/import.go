package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bankrec-dev/bankrec/internal/common"
	"github.com/bankrec-dev/bankrec/internal/matcher"
	"github.com/bankrec-dev/bankrec/internal/model"
	"github.com/bankrec-dev/bankrec/internal/ofx"
	"github.com/bankrec-dev/bankrec/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Reconcile OFX/QFX statement files against the ledger",
		Long: `Parse bank statement files and classify every transaction against the
existing ledger.

Examples:
  # Reconcile a single statement
  bankrec import ~/Downloads/checking_jan_2024.ofx

  # Reconcile several statements at once
  bankrec import ~/Downloads/*.ofx

  # Reconcile and add the genuinely new transactions to the ledger
  bankrec import --save-new ~/Downloads/checking_jan_2024.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("account", "", "account id to use when the file does not carry one")
	cmd.Flags().BoolP("dry-run", "d", false, "preview reconciliation without touching the ledger")
	cmd.Flags().Bool("save-new", false, "insert transactions classified as new into the ledger")
	cmd.Flags().BoolP("verbose", "v", false, "list every match result, not just suggestions")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	accountHint, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	saveNew, _ := cmd.Flags().GetBool("save-new")
	verbose, _ := cmd.Flags().GetBool("verbose")

	allFiles, err := expandFileArgs(args)
	if err != nil {
		return err
	}
	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	m := matcher.NewWithConfig(matcherConfig())
	maxDrift := matcherConfig().MaxDriftDays

	slog.Info("Reconciling statements",
		"file_count", len(allFiles),
		"dry_run", dryRun)

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Reconciling statements..."),
	)

	parsed := 0
	for _, filePath := range allFiles {
		if err := reconcileFile(ctx, m, store, filePath, accountHint, maxDrift, dryRun, saveNew, verbose); err != nil {
			slog.Error("Failed to reconcile file",
				"file", filepath.Base(filePath),
				"error", err)
		} else {
			parsed++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if parsed == 0 {
		return common.NewUserError("no statement file could be read; the files were not recognized as OFX", nil)
	}

	return nil
}

func reconcileFile(ctx context.Context, m *matcher.Matcher, store service.LedgerStore, filePath, accountHint string, maxDrift int, dryRun, saveNew, verbose bool) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	batch, err := ofx.NewParser().Parse(ctx, f, accountHint)
	if err != nil {
		if errors.Is(err, ofx.ErrNoTransactions) {
			return common.NewUserError("file not recognized as an OFX statement", err)
		}
		return err
	}

	if batch.AccountID == "" {
		return common.NewUserError("statement carries no account id; pass --account", nil)
	}

	// Load only the statement window plus the allowed date drift.
	from := batch.StartDate.AddDate(0, 0, -maxDrift)
	to := batch.EndDate.AddDate(0, 0, maxDrift)
	existing, err := store.GetLedgerTransactionsInRange(ctx, batch.AccountID, from, to)
	if err != nil {
		return err
	}

	results := m.Match(batch.Transactions, existing, batch.AccountID)
	summary := matcher.Summarize(results)

	printResults(filepath.Base(filePath), batch, results, summary, verbose)

	if saveNew && !dryRun {
		if err := saveNewTransactions(ctx, store, batch.AccountID, results); err != nil {
			return err
		}
	}

	return nil
}

func printResults(name string, batch *model.StatementBatch, results []model.MatchResult, summary model.Summary, verbose bool) {
	fmt.Printf("\n%s — account %s (%s to %s)\n",
		name,
		batch.AccountID,
		batch.StartDate.Format("2006-01-02"),
		batch.EndDate.Format("2006-01-02"))
	fmt.Printf("  %d transactions: %d exact, %d suggestions, %d new (match rate %s%%)\n",
		summary.Total, summary.Exact, summary.Suggestions, summary.New, summary.MatchRate)

	for _, r := range results {
		switch {
		case r.Status == model.MatchSuggestion:
			fmt.Printf("  ? %s  %8s  %-30s ~ ledger %s (confidence %.0f)\n",
				r.Transaction.Date.Format("2006-01-02"),
				r.Transaction.Amount.StringFixed(2),
				r.Transaction.Description,
				r.Existing.ID,
				r.Confidence)
		case verbose && r.Status == model.MatchExact:
			fmt.Printf("  = %s  %8s  %-30s = ledger %s (confidence %.0f)\n",
				r.Transaction.Date.Format("2006-01-02"),
				r.Transaction.Amount.StringFixed(2),
				r.Transaction.Description,
				r.Existing.ID,
				r.Confidence)
		case verbose && r.Status == model.MatchNew:
			fmt.Printf("  + %s  %8s  %s\n",
				r.Transaction.Date.Format("2006-01-02"),
				r.Transaction.Amount.StringFixed(2),
				r.Transaction.Description)
		}
	}
}

func saveNewTransactions(ctx context.Context, store service.LedgerStore, accountID string, results []model.MatchResult) error {
	var rows []model.LedgerTransaction
	for _, r := range results {
		if r.Status != model.MatchNew {
			continue
		}
		tx := r.Transaction
		rows = append(rows, model.LedgerTransaction{
			ID:          tx.ExternalID,
			AccountID:   accountID,
			Date:        tx.Date,
			Amount:      tx.Amount,
			Type:        tx.Direction.EntryType(),
			Description: tx.Description,
		})
	}

	if len(rows) == 0 {
		return nil
	}

	if err := store.SaveLedgerTransactions(ctx, rows); err != nil {
		return fmt.Errorf("failed to save new transactions: %w", err)
	}

	slog.Info("Saved new transactions to ledger",
		"account", accountID,
		"count", len(rows))

	return nil
}

// expandFileArgs resolves glob patterns and plain paths into a file list.
func expandFileArgs(args []string) ([]string, error) {
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
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
	return allFiles, nil
}
