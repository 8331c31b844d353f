package matcher

import (
	"fmt"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// Summarize groups match results by status and computes the exact-match rate.
// It never fails; an empty input produces zero counts and a 0.0 rate.
func Summarize(results []model.MatchResult) model.Summary {
	summary := model.Summary{Total: len(results)}

	for _, r := range results {
		switch r.Status {
		case model.MatchExact:
			summary.Exact++
		case model.MatchSuggestion:
			summary.Suggestions++
		case model.MatchNew:
			summary.New++
		}
	}

	rate := 0.0
	if summary.Total > 0 {
		rate = float64(summary.Exact) / float64(summary.Total) * 100
	}
	summary.MatchRate = fmt.Sprintf("%.1f", rate)

	return summary
}
