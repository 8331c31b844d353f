package model

// MatchStatus classifies one imported transaction against the ledger.
type MatchStatus string

// Match status constants.
const (
	MatchExact      MatchStatus = "exact"
	MatchSuggestion MatchStatus = "suggestion"
	MatchNew        MatchStatus = "new"
)

// MatchResult is the matcher's verdict for a single imported transaction.
// Existing and Confidence are populated if and only if Status is MatchExact
// or MatchSuggestion.
type MatchResult struct {
	Existing    *LedgerTransaction
	Status      MatchStatus
	Transaction ImportedTransaction
	Confidence  float64
}

// Summary aggregates match results for caller consumption. MatchRate is the
// exact-match share of the batch as a percentage string with one decimal.
type Summary struct {
	MatchRate   string
	Exact       int
	Suggestions int
	New         int
	Total       int
}
