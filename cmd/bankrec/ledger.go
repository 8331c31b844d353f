package main

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bankrec-dev/bankrec/internal/model"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the local ledger",
	}

	cmd.AddCommand(ledgerListCmd())
	cmd.AddCommand(ledgerAddCmd())

	return cmd
}

func ledgerListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions for an account",
		RunE:  runLedgerList,
	}

	cmd.Flags().String("account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runLedgerList(cmd *cobra.Command, _ []string) error {
	accountID, _ := cmd.Flags().GetString("account")
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.GetLedgerTransactions(ctx, accountID)
	if err != nil {
		return err
	}

	if len(transactions) == 0 {
		fmt.Printf("No ledger transactions for account %s\n", accountID)
		return nil
	}

	for _, tx := range transactions {
		sign := "+"
		if tx.Type == model.LedgerExpense {
			sign = "-"
		}
		fmt.Printf("%s  %s  %s%8s  %s\n",
			tx.ID,
			tx.Date.Format("2006-01-02"),
			sign,
			tx.Amount.StringFixed(2),
			tx.Description)
	}
	fmt.Printf("%d transactions\n", len(transactions))

	return nil
}

func ledgerAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction to the ledger",
		RunE:  runLedgerAdd,
	}

	cmd.Flags().String("account", "", "account id (required)")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (required)")
	cmd.Flags().String("amount", "", "non-negative amount (required)")
	cmd.Flags().String("type", "", "entry type: income or expense (required)")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().String("id", "", "transaction id (derived from the fields when omitted)")

	for _, name := range []string{"account", "date", "amount", "type"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runLedgerAdd(cmd *cobra.Command, _ []string) error {
	accountID, _ := cmd.Flags().GetString("account")
	dateStr, _ := cmd.Flags().GetString("date")
	amountStr, _ := cmd.Flags().GetString("amount")
	typeStr, _ := cmd.Flags().GetString("type")
	description, _ := cmd.Flags().GetString("description")
	id, _ := cmd.Flags().GetString("id")

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", dateStr, err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount must be non-negative; use --type expense for outgoing money")
	}

	entryType := model.LedgerEntryType(typeStr)
	if entryType != model.LedgerIncome && entryType != model.LedgerExpense {
		return fmt.Errorf("invalid type %q, expected income or expense", typeStr)
	}

	if id == "" {
		data := fmt.Sprintf("%s:%s:%s:%s:%s", accountID, dateStr, amount.String(), typeStr, description)
		hash := sha256.Sum256([]byte(data))
		id = fmt.Sprintf("man-%x", hash[:8])
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tx := model.LedgerTransaction{
		ID:          id,
		AccountID:   accountID,
		Date:        date,
		Amount:      amount,
		Type:        entryType,
		Description: description,
	}
	if err := store.SaveLedgerTransactions(ctx, []model.LedgerTransaction{tx}); err != nil {
		return err
	}

	fmt.Printf("Added %s to account %s\n", id, accountID)
	return nil
}
