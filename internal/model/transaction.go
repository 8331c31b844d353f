// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money moved into or out of the account.
type Direction string

// Direction constants.
const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// ImportedTransaction represents a single transaction extracted from a bank
// statement file. Amount is always a non-negative magnitude; polarity is
// encoded in Direction alone.
type ImportedTransaction struct {
	Date        time.Time
	ExternalID  string
	Description string
	Memo        string
	Amount      decimal.Decimal
	Direction   Direction
}

// FallbackID derives a stable identifier for a transaction that carries no
// bank-assigned FITID. It hashes the (date, amount, description, position)
// tuple so re-parsing the same file always yields the same identifier.
func (t *ImportedTransaction) FallbackID(position int) string {
	data := fmt.Sprintf("%s:%s:%s:%d",
		t.Date.Format("2006-01-02"),
		t.Amount.String(),
		t.Description,
		position)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("gen-%x", hash[:8])
}

// StatementBatch is the parsed form of one statement file: header fields plus
// the transactions in file order. It is immutable once produced.
type StatementBatch struct {
	StartDate    time.Time
	EndDate      time.Time
	AccountID    string
	BankID       string
	Transactions []ImportedTransaction
}
