package contacts

import (
	"fmt"
	"strings"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

// MatchOutcome explains a Match result. FailedCategory and Reason are only
// set on a mismatch and are meant for log lines.
type MatchOutcome struct {
	Matched        bool
	FailedCategory string
	Reason         string
}

// Match reports whether row satisfies every filter of rule. Filters are
// checked in order and the first failing one short-circuits. A rule with
// no filters matches every row.
func Match(row, headers []string, rule domain.FilterRule) MatchOutcome {
	for _, f := range rule.Filters {
		idx := columnIndex(headers, f.Category)
		if idx == -1 {
			return MatchOutcome{FailedCategory: f.Category, Reason: "column not found"}
		}

		cell, ok := domain.Cell(row, idx)
		if !ok {
			return MatchOutcome{FailedCategory: f.Category, Reason: "no value in row"}
		}

		got := strings.TrimSpace(cell)
		if !strings.EqualFold(got, strings.TrimSpace(f.Value)) {
			return MatchOutcome{
				FailedCategory: f.Category,
				Reason:         fmt.Sprintf("expected '%s', got '%s'", f.Value, got),
			}
		}
	}

	return MatchOutcome{Matched: true}
}

// columnIndex returns the first header equal to category, or -1.
func columnIndex(headers []string, category string) int {
	for i, h := range headers {
		if h == category {
			return i
		}
	}
	return -1
}
