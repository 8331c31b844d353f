package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType is the ledger's own polarity convention for a transaction.
type LedgerEntryType string

// Ledger entry type constants.
const (
	LedgerIncome  LedgerEntryType = "income"
	LedgerExpense LedgerEntryType = "expense"
)

// Direction maps the ledger polarity onto statement polarity: income lines
// correspond to credits, expense lines to debits.
func (t LedgerEntryType) Direction() Direction {
	if t == LedgerIncome {
		return DirectionCredit
	}
	return DirectionDebit
}

// EntryType is the inverse mapping, used when promoting imported statement
// lines into ledger rows.
func (d Direction) EntryType() LedgerEntryType {
	if d == DirectionCredit {
		return LedgerIncome
	}
	return LedgerExpense
}

// LedgerTransaction is a read-only snapshot of one row from the user's
// existing ledger. Amount is a non-negative magnitude signed by Type.
type LedgerTransaction struct {
	Date        time.Time
	ID          string
	AccountID   string
	Description string
	Amount      decimal.Decimal
	Type        LedgerEntryType
}
