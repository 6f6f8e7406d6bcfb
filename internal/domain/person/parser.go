package person

import (
	"sort"
	"strings"
	"unicode"
)

// markers that introduce an explicit person reference, e.g. "person: J Lee, pushups".
var markers = []string{"person:", "@"}

// NameIndex matches leading person references against known display names.
// Matching is case-insensitive and longest-match-first, so one name being a
// prefix of another ("J Lee" vs "J Lee Jr") never picks the shorter match.
// Build one index per request from the directory snapshot.
type NameIndex struct {
	persons []Person
}

// NewNameIndex builds an index over the given persons, ordered longest
// display name first.
func NewNameIndex(persons []Person) *NameIndex {
	sorted := append([]Person(nil), persons...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].name) > len(sorted[j].name)
	})
	return &NameIndex{persons: sorted}
}

// Parse detects a person reference at the start of query.
//
// Two forms are recognized: an explicit "person:" marker followed by a known
// name, or a bare known name at the very start of the query. The matched span
// must end at a word boundary so "J Lee" never matches inside "J Leeway".
// Returns (match, true) on success; the residual has the span and any
// separator punctuation trimmed.
func (idx *NameIndex) Parse(query string) (Match, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(idx.persons) == 0 {
		return Match{}, false
	}

	body := trimmed
	lower := strings.ToLower(body)
	for _, m := range markers {
		if strings.HasPrefix(lower, m) {
			body = strings.TrimSpace(body[len(m):])
			break
		}
	}

	// An explicit marker with an unknown name leaves the query untouched
	// rather than guessing.
	p, rest, ok := idx.matchLeading(body)
	if !ok {
		return Match{}, false
	}

	return Match{Person: p, Residual: trimResidual(rest)}, true
}

// matchLeading finds the longest known name at the start of body.
func (idx *NameIndex) matchLeading(body string) (Person, string, bool) {
	lower := strings.ToLower(body)
	for _, p := range idx.persons {
		name := strings.ToLower(p.name)
		if name == "" || !strings.HasPrefix(lower, name) {
			continue
		}
		rest := body[len(name):]
		if !boundary(rest) {
			continue
		}
		return p, rest, true
	}
	return Person{}, "", false
}

// boundary reports whether rest starts at a word boundary.
func boundary(rest string) bool {
	if rest == "" {
		return true
	}
	r := []rune(rest)[0]
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// trimResidual drops leading separator punctuation and surrounding whitespace.
func trimResidual(rest string) string {
	rest = strings.TrimLeftFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ':' || r == ';' || r == '-'
	})
	return strings.TrimSpace(rest)
}
