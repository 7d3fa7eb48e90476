package commission

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"commission-reconciliation/internal/domain"
)

// DefaultFallbackTokens are the specification values that mark a keyword's fallback rule.
var DefaultFallbackTokens = []string{"other", "其他"}

// SpecMode selects how specifications and descriptions are normalized
// before the containment test.
type SpecMode string

const (
	// SpecCollapse collapses runs of whitespace to one space and trims.
	SpecCollapse SpecMode = "collapse"
	// SpecStrip folds width and case and removes every whitespace rune, so
	// "500 G" and "500g" compare equal.
	SpecStrip SpecMode = "strip"
)

// ParseSpecMode maps a configured mode to a SpecMode. Empty means SpecCollapse.
func ParseSpecMode(s string) (SpecMode, error) {
	switch SpecMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SpecCollapse:
		return SpecCollapse, nil
	case SpecStrip:
		return SpecStrip, nil
	}
	return "", domain.NewConfigError("unknown specification match mode %q (want collapse or strip)", s)
}

// Normalize applies the mode to s.
func (m SpecMode) Normalize(s string) string {
	if m == SpecStrip {
		return StripSpec(s)
	}
	return NormalizeSpec(s)
}

// FoldKeyword prepares a keyword or product name for case-insensitive
// containment: full-width forms are narrowed, case is folded and the
// surrounding whitespace trimmed.
func FoldKeyword(s string) string {
	return strings.TrimSpace(cases.Fold().String(width.Fold.String(s)))
}

// NormalizeSpec collapses internal whitespace runs to a single space and
// trims the ends.
func NormalizeSpec(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripSpec applies FoldKeyword and then removes every whitespace rune.
func StripSpec(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, FoldKeyword(s))
}

// tokenSet holds fallback tokens in their stripped form, so "Other" and
// "其 他" are recognised whatever the match mode.
type tokenSet map[string]struct{}

func newTokenSet(tokens []string) tokenSet {
	if len(tokens) == 0 {
		tokens = DefaultFallbackTokens
	}
	set := make(tokenSet, len(tokens))
	for _, t := range tokens {
		if n := StripSpec(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s tokenSet) contains(spec string) bool {
	_, ok := s[StripSpec(spec)]
	return ok
}
