// Package ofx implements a permissive parser for OFX/QFX statement files.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// ErrNoTransactions indicates that no usable transactions could be extracted
// from the statement text.
var ErrNoTransactions = errors.New("no transactions found")

// Tag aliases seen across bank exports. The first occurrence of any alias
// wins, matching how banks place these once per statement.
var (
	accountTags   = []string{"ACCTID", "ACCTNUM"}
	bankTags      = []string{"BANKID", "ORG", "FID"}
	startDateTags = []string{"DTSTART"}
	endDateTags   = []string{"DTEND"}
)

// transactionTag delimits one transaction block.
const transactionTag = "STMTTRN"

// Parser implements OFX/QFX statement parsing. It is stateless; one instance
// can parse any number of files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads raw OFX text and produces a StatementBatch. accountHint fills
// in the account identifier when the file itself does not carry one. It fails
// only when the input cannot be read or yields zero usable transactions;
// individually malformed transaction blocks are skipped with a warning.
func (p *Parser) Parse(ctx context.Context, reader io.Reader, accountHint string) (*model.StatementBatch, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	tokens := tokenize(string(content))

	batch := &model.StatementBatch{
		AccountID: firstValue(tokens, accountTags),
		BankID:    firstValue(tokens, bankTags),
	}
	if batch.AccountID == "" {
		batch.AccountID = accountHint
	}
	if d, ok := parseDate(firstValue(tokens, startDateTags)); ok {
		batch.StartDate = d
	}
	if d, ok := parseDate(firstValue(tokens, endDateTags)); ok {
		batch.EndDate = d
	}

	skipped := 0
	for position, block := range transactionBlocks(tokens) {
		tx, ok := convertBlock(block, position)
		if !ok {
			skipped++
			continue
		}
		batch.Transactions = append(batch.Transactions, tx)
	}

	if len(batch.Transactions) == 0 {
		return nil, fmt.Errorf("parse statement: %w", ErrNoTransactions)
	}

	// Some exports omit the statement range; fall back to the posted dates.
	if batch.StartDate.IsZero() {
		batch.StartDate = batch.Transactions[0].Date
		for _, tx := range batch.Transactions {
			if tx.Date.Before(batch.StartDate) {
				batch.StartDate = tx.Date
			}
		}
	}
	if batch.EndDate.IsZero() {
		batch.EndDate = batch.Transactions[0].Date
		for _, tx := range batch.Transactions {
			if tx.Date.After(batch.EndDate) {
				batch.EndDate = tx.Date
			}
		}
	}

	slog.Info("Parsed OFX statement",
		"account", batch.AccountID,
		"transactions", len(batch.Transactions),
		"skipped", skipped)

	return batch, nil
}

// firstValue returns the text of the first non-empty occurrence of any of the
// given tag names.
func firstValue(tokens []token, names []string) string {
	for _, tok := range tokens {
		if tok.closing || tok.text == "" {
			continue
		}
		for _, name := range names {
			if tok.name == name {
				return tok.text
			}
		}
	}
	return ""
}

// transactionBlocks groups tokens into STMTTRN spans, in file order. A new
// open tag before the close implicitly terminates the previous block, so one
// unclosed block does not swallow the rest of the file. Within a block only
// the first occurrence of each tag is kept.
func transactionBlocks(tokens []token) []map[string]string {
	var blocks []map[string]string
	var current map[string]string

	for _, tok := range tokens {
		switch {
		case tok.name == transactionTag && !tok.closing:
			if current != nil {
				blocks = append(blocks, current)
			}
			current = make(map[string]string)
		case tok.name == transactionTag && tok.closing:
			if current != nil {
				blocks = append(blocks, current)
				current = nil
			}
		case current != nil && !tok.closing && tok.text != "":
			if _, seen := current[tok.name]; !seen {
				current[tok.name] = tok.text
			}
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// convertBlock turns one STMTTRN block into an ImportedTransaction. Blocks
// missing a posting date or amount are unusable and reported as such.
func convertBlock(block map[string]string, position int) (model.ImportedTransaction, bool) {
	var tx model.ImportedTransaction

	date, ok := parseDate(block["DTPOSTED"])
	if !ok {
		slog.Warn("Skipping transaction with missing or malformed date",
			"position", position,
			"dtposted", block["DTPOSTED"])
		return tx, false
	}

	amount, ok := parseAmount(block["TRNAMT"])
	if !ok {
		slog.Warn("Skipping transaction with missing or malformed amount",
			"position", position,
			"trnamt", block["TRNAMT"])
		return tx, false
	}

	tx.Date = date
	tx.Direction = model.DirectionCredit
	if amount.Sign() < 0 {
		tx.Direction = model.DirectionDebit
	}
	tx.Amount = amount.Abs()

	tx.Description = block["NAME"]
	if tx.Description == "" {
		tx.Description = block["PAYEE"]
	}
	tx.Memo = block["MEMO"]
	if tx.Description == "" {
		tx.Description = tx.Memo
	}

	tx.ExternalID = block["FITID"]
	if tx.ExternalID == "" {
		tx.ExternalID = tx.FallbackID(position)
	}

	return tx, true
}

// parseDate normalizes the compact OFX form YYYYMMDD[HHMMSS[.XXX][TZ]] down
// to a calendar date at midnight UTC. Anything shorter than eight digits is
// malformed.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 8 {
		return time.Time{}, false
	}
	for _, r := range value[:8] {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}
	date, err := time.ParseInLocation("20060102", value[:8], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// parseAmount reads a signed decimal amount, tolerating comma decimal
// separators seen in some non-US exports.
func parseAmount(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Decimal{}, false
	}
	value = strings.ReplaceAll(value, ",", ".")
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
