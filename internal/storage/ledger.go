package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// SaveLedgerTransactions inserts ledger rows, ignoring duplicates by id.
func (s *SQLiteStorage) SaveLedgerTransactions(ctx context.Context, transactions []model.LedgerTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLedgerTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO ledger_transactions (
			id, account_id, date, amount, type, description
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		_, err = stmt.ExecContext(ctx,
			txn.ID,
			txn.AccountID,
			txn.Date,
			txn.Amount.String(),
			string(txn.Type),
			txn.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetLedgerTransactions returns every ledger row for one account, ordered by
// date then id so scans are deterministic.
func (s *SQLiteStorage) GetLedgerTransactions(ctx context.Context, accountID string) ([]model.LedgerTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, date, amount, type, description
		FROM ledger_transactions
		WHERE account_id = ?
		ORDER BY date, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLedgerTransactions(rows)
}

// GetLedgerTransactionsInRange returns the account's rows with dates in
// [from, to], inclusive. The import command uses this to load only the
// statement window plus the allowed date drift.
func (s *SQLiteStorage) GetLedgerTransactionsInRange(ctx context.Context, accountID string, from, to time.Time) ([]model.LedgerTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, date, amount, type, description
		FROM ledger_transactions
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id
	`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLedgerTransactions(rows)
}

func scanLedgerTransactions(rows *sql.Rows) ([]model.LedgerTransaction, error) {
	var transactions []model.LedgerTransaction

	for rows.Next() {
		var (
			txn         model.LedgerTransaction
			amount      string
			entryType   string
			description sql.NullString
		)
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Date, &amount, &entryType, &description); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount for %s: %w", txn.ID, err)
		}
		txn.Amount = parsed
		txn.Type = model.LedgerEntryType(entryType)
		txn.Description = description.String

		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger rows: %w", err)
	}

	return transactions, nil
}
