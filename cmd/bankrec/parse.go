package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bankrec-dev/bankrec/internal/model"
	"github.com/bankrec-dev/bankrec/internal/ofx"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a statement file and show what it contains",
		Long: `Parse an OFX/QFX statement without touching the ledger. Useful to check
what bankrec can extract from a bank export before reconciling it.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().String("account", "", "account id to use when the file does not carry one")
	cmd.Flags().BoolP("verbose", "v", false, "show every transaction with memo and id")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	accountHint, _ := cmd.Flags().GetString("account")
	verbose, _ := cmd.Flags().GetBool("verbose")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	batch, err := ofx.NewParser().Parse(cmd.Context(), f, accountHint)
	if err != nil {
		return err
	}

	credits := decimal.Zero
	debits := decimal.Zero
	for _, tx := range batch.Transactions {
		if tx.Direction == model.DirectionCredit {
			credits = credits.Add(tx.Amount)
		} else {
			debits = debits.Add(tx.Amount)
		}
	}

	fmt.Printf("Account:  %s\n", batch.AccountID)
	fmt.Printf("Bank:     %s\n", batch.BankID)
	fmt.Printf("Period:   %s to %s\n",
		batch.StartDate.Format("2006-01-02"),
		batch.EndDate.Format("2006-01-02"))
	fmt.Printf("Rows:     %d (credits %s, debits %s)\n",
		len(batch.Transactions),
		credits.StringFixed(2),
		debits.StringFixed(2))

	limit := 5
	if verbose {
		limit = len(batch.Transactions)
	}
	fmt.Println("──────────────────────────────────────────────────────")
	for i, tx := range batch.Transactions {
		if i >= limit {
			fmt.Printf("… and %d more (use --verbose to list all)\n", len(batch.Transactions)-limit)
			break
		}
		sign := "+"
		if tx.Direction == model.DirectionDebit {
			sign = "-"
		}
		fmt.Printf("%s  %s%8s  %s\n",
			tx.Date.Format("2006-01-02"),
			sign,
			tx.Amount.StringFixed(2),
			tx.Description)
		if verbose {
			if tx.Memo != "" {
				fmt.Printf("            memo: %s\n", tx.Memo)
			}
			fmt.Printf("            id:   %s\n", tx.ExternalID)
		}
	}

	return nil
}
