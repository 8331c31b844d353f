// Package matcher implements the reconciliation engine that classifies
// imported statement transactions against an existing ledger.
package matcher

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// Config holds the thresholds governing match classification. All similarity
// values are on a 0-100 scale.
type Config struct {
	// AmountTolerance is the maximum absolute amount difference still
	// considered equal. Candidates at or beyond it are never matched.
	AmountTolerance decimal.Decimal
	// ExactThreshold is the same-day similarity at which a candidate is an
	// exact duplicate.
	ExactThreshold float64
	// SameDayThreshold is the minimum same-day similarity for a suggestion.
	SameDayThreshold float64
	// DriftThreshold is the minimum similarity for a suggestion whose date
	// drifted from the imported one.
	DriftThreshold float64
	// MaxDriftDays bounds how far a candidate's date may drift.
	MaxDriftDays int
	// DriftPenalty is the confidence discount applied per day of drift.
	DriftPenalty float64
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:  decimal.New(1, -2), // one cent
		ExactThreshold:   85,
		SameDayThreshold: 40,
		DriftThreshold:   60,
		MaxDriftDays:     3,
		DriftPenalty:     0.1,
	}
}

// Matcher classifies imported transactions against ledger snapshots. It is
// stateless across calls and safe to reuse.
type Matcher struct {
	cfg Config
}

// New creates a matcher with the default configuration.
func New() *Matcher {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a matcher with custom thresholds.
func NewWithConfig(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match classifies every imported transaction against the ledger rows
// belonging to accountID. It is a total function: the result is always
// aligned 1:1 with imported, and an empty ledger yields all-new results.
func (m *Matcher) Match(imported []model.ImportedTransaction, existing []model.LedgerTransaction, accountID string) []model.MatchResult {
	candidates := make([]model.LedgerTransaction, 0, len(existing))
	for _, row := range existing {
		if row.AccountID == accountID {
			candidates = append(candidates, row)
		}
	}

	results := make([]model.MatchResult, 0, len(imported))
	for _, tx := range imported {
		results = append(results, m.matchOne(tx, candidates))
	}

	slog.Debug("Matched statement against ledger",
		"imported", len(imported),
		"candidates", len(candidates))

	return results
}

// matchOne scans the candidates in ledger order and keeps the single best
// match under a three-tier priority scheme:
//
//	Tier A: same day, similarity >= ExactThreshold -> exact
//	Tier B: same day, similarity >= SameDayThreshold -> suggestion
//	Tier C: within MaxDriftDays, similarity >= DriftThreshold -> suggestion,
//	        confidence discounted by DriftPenalty per day of drift
//
// The first candidate reaching Tier A wins immediately and ends the scan.
// This first-good-enough-match policy is deliberate; it mirrors how the
// matcher has always behaved and keeps outcomes stable, so it must not be
// "improved" into a full search. A Tier C candidate never displaces a Tier B
// one, and the stored Tier C confidence is the weighted value, which may fall
// below the admission threshold.
func (m *Matcher) matchOne(tx model.ImportedTransaction, candidates []model.LedgerTransaction) model.MatchResult {
	result := model.MatchResult{
		Transaction: tx,
		Status:      model.MatchNew,
	}

	var (
		sameDayBest  *model.LedgerTransaction
		sameDaySim   float64
		driftedBest  *model.LedgerTransaction
		driftedConf  float64
		driftedFound bool
	)

	for i := range candidates {
		candidate := &candidates[i]

		if candidate.Amount.Sub(tx.Amount).Abs().Cmp(m.cfg.AmountTolerance) >= 0 {
			continue
		}
		if candidate.Type.Direction() != tx.Direction {
			continue
		}

		days := dateDiffDays(tx.Date, candidate.Date)
		sim := Similarity(tx.Description, candidate.Description)

		if days == 0 {
			if sim >= m.cfg.ExactThreshold {
				result.Status = model.MatchExact
				result.Existing = candidate
				result.Confidence = sim
				return result
			}
			if sim >= m.cfg.SameDayThreshold && sim > sameDaySim {
				sameDayBest = candidate
				sameDaySim = sim
			}
			continue
		}

		if days <= m.cfg.MaxDriftDays && sim >= m.cfg.DriftThreshold {
			weighted := sim * (1 - float64(days)*m.cfg.DriftPenalty)
			if !driftedFound || weighted > driftedConf {
				driftedBest = candidate
				driftedConf = weighted
				driftedFound = true
			}
		}
	}

	switch {
	case sameDayBest != nil:
		result.Status = model.MatchSuggestion
		result.Existing = sameDayBest
		result.Confidence = sameDaySim
	case driftedFound:
		result.Status = model.MatchSuggestion
		result.Existing = driftedBest
		result.Confidence = driftedConf
	}

	return result
}

// dateDiffDays returns the absolute calendar-day difference, ignoring any
// time-of-day component.
func dateDiffDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(ad.Sub(bd).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
