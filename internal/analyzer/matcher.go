package analyzer

import (
	"strings"
	"unicode"
)

// TermMatch counts occurrences of one search keyword across result text.
type TermMatch struct {
	Term    string `json:"term"`
	Count   int    `json:"count"`
	Entries int    `json:"entries"` // how many texts contained the term at least once
}

// Matcher counts case-insensitive keyword occurrences. Thai and other
// unspaced scripts are matched as plain substrings.
type Matcher struct {
	terms []string
	lower []string
	found []TermMatch
}

// NewMatcher prepares a Matcher for terms. Blank and duplicate terms are
// dropped.
func NewMatcher(terms []string) *Matcher {
	m := &Matcher{}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		l := normalize(t)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		m.terms = append(m.terms, t)
		m.lower = append(m.lower, l)
	}
	m.found = make([]TermMatch, len(m.terms))
	for i, t := range m.terms {
		m.found[i].Term = t
	}
	return m
}

// Add scans one text and accumulates the counts.
func (m *Matcher) Add(text string) {
	if text == "" || len(m.lower) == 0 {
		return
	}
	lt := normalize(text)
	for i, term := range m.lower {
		if n := strings.Count(lt, term); n > 0 {
			m.found[i].Count += n
			m.found[i].Entries++
		}
	}
}

// Matches returns the accumulated counts in term order.
func (m *Matcher) Matches() []TermMatch {
	out := make([]TermMatch, len(m.found))
	copy(out, m.found)
	return out
}

// normalize lowercases s and collapses runs of whitespace to one space.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}
