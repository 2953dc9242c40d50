package catalog

import "strings"

// Outcome classifies how a candidate was found.
type Outcome string

const (
	OutcomeExact   Outcome = "exact"
	OutcomePartial Outcome = "partial"
	OutcomeNone    Outcome = "none"
)

// Matchable exposes a record's comparable fields in priority order. Fields
// must already reflect the record's raw values; the matcher lower-cases them
// before comparison. Partial fields deliberately exclude display names so OCR
// noise cannot land on an unrelated record through a partial name hit.
type Matchable interface {
	ExactFields() []string
	PartialFields() []string
}

// Match runs the two-pass strategy over ordered candidates: an exact-equality
// pass over every candidate first, then a substring fallback only when the
// exact pass found nothing. The first matching candidate wins in both passes;
// there is no scoring among ties. An empty canonical key means no match is
// attempted. Absence is a normal outcome, not an error.
func Match[T Matchable](key string, candidates []T) (T, Outcome) {
	var zero T
	if key == "" {
		return zero, OutcomeNone
	}

	for _, cand := range candidates {
		for _, field := range cand.ExactFields() {
			if field != "" && strings.ToLower(field) == key {
				return cand, OutcomeExact
			}
		}
	}

	for _, cand := range candidates {
		for _, field := range cand.PartialFields() {
			if field != "" && strings.Contains(strings.ToLower(field), key) {
				return cand, OutcomePartial
			}
		}
	}

	return zero, OutcomeNone
}
