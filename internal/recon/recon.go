package recon

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Project identifiers look like A-001: one uppercase letter, a hyphen and a
// three digit sequence, optionally wrapped in square brackets by whoever
// typed the SAP header text. Matching is case-sensitive and first-match-wins.
var projIDPattern = regexp.MustCompile(`\[?([A-Z]-\d{3})\]?`)

// ExtractProjectID scans free-form ledger header text for a project
// identifier. The second return value is false when no candidate was found.
func ExtractProjectID(headerText string) (string, bool) {
	m := projIDPattern.FindStringSubmatch(headerText)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Key identifies one cell of the monthly actuals grid.
type Key struct {
	ProjID string
	YYYYMM string
}

// MappedLine is the slice of a raw ledger line that aggregation cares about.
type MappedLine struct {
	ProjID string
	YYYYMM string
	Amount decimal.Decimal
}

// Aggregate folds mapped ledger lines into per-project, per-month totals.
// It is a pure full recompute: callers overwrite stored actuals with the
// returned sums, which makes re-running a sync after any mapping change
// idempotent.
func Aggregate(lines []MappedLine) map[Key]decimal.Decimal {
	totals := make(map[Key]decimal.Decimal, len(lines))
	for _, ln := range lines {
		k := Key{ProjID: ln.ProjID, YYYYMM: ln.YYYYMM}
		totals[k] = totals[k].Add(ln.Amount)
	}
	return totals
}
