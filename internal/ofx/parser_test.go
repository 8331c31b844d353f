package ofx

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115000000[0:GMT]
<TRNAMT>-8.75
<FITID>2024011501
<NAME>Uber
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024012501
<NAME>PAYROLL ACME CORP
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

// messyOFX exercises the tolerance the format demands: mixed-case tags,
// unclosed tags, a block with no close tag, a malformed date, a missing
// amount, a comma decimal separator and no FITIDs.
const messyOFX = `<ofx>
<bankmsgsrsv1>
<stmtrs>
<bankid>77
<acctid>555-01
<banktranlist>
<stmttrn>
<dtposted>20240310
<trnamt>-42,50
<name>PADARIA CENTRAL
<stmttrn>
<DTPOSTED>2024031
<TRNAMT>-10.00
<NAME>broken date, must be skipped
</stmttrn>
<STMTTRN>
<DTPOSTED>20240312000000
<NAME>no amount, must be skipped
</STMTTRN>
<StmtTrn>
<DtPosted>20240315120000[0:GMT]
<TrnAmt>1000.00
<Name>SALARIO
<Memo>monthly salary
`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
			expectedError: false,
		},
		{
			name:          "messy statement keeps usable records",
			ofxData:       messyOFX,
			expectedCount: 2,
			expectedError: false,
		},
		{
			name:          "not OFX at all",
			ofxData:       "just some plain text",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty input",
			ofxData:       "",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "tags but no transactions",
			ofxData:       "<OFX><BANKID>1<ACCTID>2</OFX>",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			batch, err := parser.Parse(context.Background(), strings.NewReader(tt.ofxData), "")

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNoTransactions)
			} else {
				require.NoError(t, err)
				assert.Len(t, batch.Transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	parser := NewParser()

	batch, err := parser.Parse(context.Background(), strings.NewReader(sampleBankOFX), "")
	require.NoError(t, err)

	assert.Equal(t, "1234567890", batch.AccountID)
	assert.Equal(t, "123456789", batch.BankID)
	assert.Equal(t, "2024-01-01", batch.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", batch.EndDate.Format("2006-01-02"))
	require.Len(t, batch.Transactions, 3)

	// Debit: sign folded into direction, magnitude stored
	tx1 := batch.Transactions[0]
	assert.Equal(t, "2024011501", tx1.ExternalID)
	assert.Equal(t, "Uber", tx1.Description)
	assert.Equal(t, "2024-01-15", tx1.Date.Format("2006-01-02"))
	assert.Equal(t, model.DirectionDebit, tx1.Direction)
	assert.True(t, tx1.Amount.Equal(decimal.RequireFromString("8.75")))

	tx2 := batch.Transactions[1]
	assert.Equal(t, "Whole Foods Market", tx2.Description)
	assert.Equal(t, model.DirectionDebit, tx2.Direction)
	assert.True(t, tx2.Amount.Equal(decimal.RequireFromString("125.00")))

	// Credit keeps positive direction
	tx3 := batch.Transactions[2]
	assert.Equal(t, model.DirectionCredit, tx3.Direction)
	assert.True(t, tx3.Amount.Equal(decimal.RequireFromString("2500.00")))
}

func TestParseMessyStatement(t *testing.T) {
	parser := NewParser()

	batch, err := parser.Parse(context.Background(), strings.NewReader(messyOFX), "")
	require.NoError(t, err)

	assert.Equal(t, "555-01", batch.AccountID)
	assert.Equal(t, "77", batch.BankID)
	require.Len(t, batch.Transactions, 2)

	// Comma decimal separator normalized, case-insensitive tags
	tx1 := batch.Transactions[0]
	assert.Equal(t, "PADARIA CENTRAL", tx1.Description)
	assert.Equal(t, model.DirectionDebit, tx1.Direction)
	assert.True(t, tx1.Amount.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, "2024-03-10", tx1.Date.Format("2006-01-02"))

	tx2 := batch.Transactions[1]
	assert.Equal(t, "SALARIO", tx2.Description)
	assert.Equal(t, "monthly salary", tx2.Memo)
	assert.Equal(t, model.DirectionCredit, tx2.Direction)

	// No DTSTART/DTEND in the file: range falls back to posted dates
	assert.Equal(t, "2024-03-10", batch.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", batch.EndDate.Format("2006-01-02"))
}

func TestSignInvariant(t *testing.T) {
	parser := NewParser()

	for _, data := range []string{sampleBankOFX, messyOFX} {
		batch, err := parser.Parse(context.Background(), strings.NewReader(data), "")
		require.NoError(t, err)
		for _, tx := range batch.Transactions {
			assert.False(t, tx.Amount.IsNegative(), "amount must be a non-negative magnitude")
			assert.Contains(t, []model.Direction{model.DirectionCredit, model.DirectionDebit}, tx.Direction)
		}
	}
}

func TestDeterministicFallbackIDs(t *testing.T) {
	parser := NewParser()

	first, err := parser.Parse(context.Background(), strings.NewReader(messyOFX), "")
	require.NoError(t, err)
	second, err := parser.Parse(context.Background(), strings.NewReader(messyOFX), "")
	require.NoError(t, err)

	require.Len(t, second.Transactions, len(first.Transactions))
	for i := range first.Transactions {
		id := first.Transactions[i].ExternalID
		assert.NotEmpty(t, id)
		assert.True(t, strings.HasPrefix(id, "gen-"), "derived ids are marked: %s", id)
		assert.Equal(t, id, second.Transactions[i].ExternalID, "re-parsing must yield identical ids")
	}

	// Derived ids must differ between distinct records
	assert.NotEqual(t, first.Transactions[0].ExternalID, first.Transactions[1].ExternalID)
}

func TestAccountHint(t *testing.T) {
	parser := NewParser()

	const noAccount = `<OFX>
<STMTTRN>
<DTPOSTED>20240115
<TRNAMT>-5.00
<NAME>COFFEE
</STMTTRN>
</OFX>`

	batch, err := parser.Parse(context.Background(), strings.NewReader(noAccount), "hint-99")
	require.NoError(t, err)
	assert.Equal(t, "hint-99", batch.AccountID)

	// The file's own account id wins over the hint
	batch, err = parser.Parse(context.Background(), strings.NewReader(sampleBankOFX), "hint-99")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", batch.AccountID)
}

// TestParserAgreesWithOfxgo pins the tolerant parser against a strict
// reference implementation: on a well-formed document both must see the same
// account, the same record count and the same per-record fields.
func TestParserAgreesWithOfxgo(t *testing.T) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Bank)

	stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	require.True(t, ok)
	require.NotNil(t, stmt.BankTranList)

	batch, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX), "")
	require.NoError(t, err)

	assert.Equal(t, string(stmt.BankAcctFrom.AcctID), batch.AccountID)
	require.Len(t, batch.Transactions, len(stmt.BankTranList.Transactions))

	for i, want := range stmt.BankTranList.Transactions {
		got := batch.Transactions[i]

		assert.Equal(t, string(want.FiTID), got.ExternalID)
		assert.Equal(t, want.DtPosted.Time.Year(), got.Date.Year())
		assert.Equal(t, want.DtPosted.Time.Month(), got.Date.Month())
		assert.Equal(t, want.DtPosted.Time.Day(), got.Date.Day())

		wantAmount, _ := want.TrnAmt.Float64()
		assert.InDelta(t, math.Abs(wantAmount), got.Amount.InexactFloat64(), 0.001)

		wantDirection := model.DirectionCredit
		if wantAmount < 0 {
			wantDirection = model.DirectionDebit
		}
		assert.Equal(t, wantDirection, got.Direction)
	}
}
