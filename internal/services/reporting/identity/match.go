package identity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ClosestMatch returns the candidate most similar to word whose
// SequenceMatcher ratio is at least cutoff. Ties on score go to the
// lexicographically greatest candidate, matching difflib.get_close_matches
// with n=1. The cheap upper-bound ratios reject candidates before the full
// ratio is computed.
func ClosestMatch(word string, candidates []string, cutoff float64) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	matcher := difflib.NewMatcher(nil, symbols(word))

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, candidate := range candidates {
		matcher.SetSeq1(symbols(candidate))
		if matcher.RealQuickRatio() < cutoff || matcher.QuickRatio() < cutoff {
			continue
		}
		score := matcher.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && candidate > best) {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, found
}

// symbols splits text into one element per rune.
func symbols(text string) []string {
	return strings.Split(text, "")
}
