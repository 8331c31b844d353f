// Package service defines the interfaces the command layer wires against.
package service

import (
	"context"
	"time"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// LedgerStore is the contract for the persistence layer holding the user's
// existing ledger. The matcher never talks to it directly; callers load a
// snapshot and hand the rows over as plain slices.
type LedgerStore interface {
	Migrate(ctx context.Context) error
	SaveLedgerTransactions(ctx context.Context, transactions []model.LedgerTransaction) error
	GetLedgerTransactions(ctx context.Context, accountID string) ([]model.LedgerTransaction, error)
	GetLedgerTransactionsInRange(ctx context.Context, accountID string, from, to time.Time) ([]model.LedgerTransaction, error)
	Close() error
}
