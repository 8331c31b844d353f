package storage

import (
	"context"
	"fmt"

	"github.com/bankrec-dev/bankrec/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateLedgerTransactions(transactions []model.LedgerTransaction) error {
	for i, tx := range transactions {
		if tx.ID == "" {
			return fmt.Errorf("transaction %d: id cannot be empty", i)
		}
		if tx.AccountID == "" {
			return fmt.Errorf("transaction %d: account id cannot be empty", i)
		}
		if tx.Amount.IsNegative() {
			return fmt.Errorf("transaction %d: amount must be a non-negative magnitude", i)
		}
		if tx.Type != model.LedgerIncome && tx.Type != model.LedgerExpense {
			return fmt.Errorf("transaction %d: unknown entry type %q", i, tx.Type)
		}
	}
	return nil
}
