package commission

import (
	"strings"

	"commission-reconciliation/internal/domain"
)

// RuleOptions controls how a rulebook is indexed.
type RuleOptions struct {
	// FallbackTokens lists the specification values meaning "no other rule
	// under this keyword matched". DefaultFallbackTokens when empty.
	FallbackTokens []string
	// SpecMatch selects the specification normalization. SpecCollapse when empty.
	SpecMatch SpecMode
}

type specRule struct {
	rule domain.CommissionRule
	spec string // normalized specification
}

// RuleIndex maps folded keywords to their ordered specification rules and
// optional fallback rule.
type RuleIndex struct {
	keywords []string
	specific map[string][]specRule
	fallback map[string]domain.CommissionRule
	mode     SpecMode
	size     int
	dropped  int
}

// LoadRules indexes the rulebook. Rules keep their load order within a
// keyword; exact duplicate rows are dropped. Two fallback rules for the same
// keyword make the rulebook ambiguous and fail with a ConfigError.
func LoadRules(rules []domain.CommissionRule, opts RuleOptions) (*RuleIndex, error) {
	tokens := newTokenSet(opts.FallbackTokens)
	mode, err := ParseSpecMode(string(opts.SpecMatch))
	if err != nil {
		return nil, err
	}
	idx := &RuleIndex{
		mode:     mode,
		specific: make(map[string][]specRule),
		fallback: make(map[string]domain.CommissionRule),
	}

	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		key := ruleKey(r)
		if _, dup := seen[key]; dup {
			idx.dropped++
			continue
		}
		seen[key] = struct{}{}

		keyword := FoldKeyword(r.Keyword)
		if keyword == "" {
			return nil, domain.NewConfigError("rule %d has an empty keyword", i+1)
		}
		if r.ExistingRate.IsNegative() || r.IncrementalRate.IsNegative() {
			return nil, domain.NewConfigError("rule %d (%s/%s) has a negative rate", i+1, r.Keyword, r.Specification)
		}
		spec := mode.Normalize(r.Specification)
		if spec == "" {
			return nil, domain.NewConfigError("rule %d (%s) has an empty specification", i+1, r.Keyword)
		}

		if _, known := idx.specific[keyword]; !known {
			if _, known = idx.fallback[keyword]; !known {
				idx.keywords = append(idx.keywords, keyword)
			}
		}

		if tokens.contains(spec) {
			if prev, exists := idx.fallback[keyword]; exists {
				return nil, domain.NewConfigError("keyword %q has more than one fallback rule (%q and %q)",
					r.Keyword, prev.Specification, r.Specification)
			}
			r.Fallback = true
			idx.fallback[keyword] = r
		} else {
			idx.specific[keyword] = append(idx.specific[keyword], specRule{rule: r, spec: spec})
		}
		idx.size++
	}
	return idx, nil
}

// RulesForKeyword returns the specific rules of a keyword in load order and
// its fallback rule, if any.
func (idx *RuleIndex) RulesForKeyword(keyword string) ([]domain.CommissionRule, *domain.CommissionRule) {
	k := FoldKeyword(keyword)
	var specific []domain.CommissionRule
	for _, sr := range idx.specific[k] {
		specific = append(specific, sr.rule)
	}
	if fb, ok := idx.fallback[k]; ok {
		return specific, &fb
	}
	return specific, nil
}

// Keywords returns the folded keywords in first-seen order.
func (idx *RuleIndex) Keywords() []string {
	out := make([]string, len(idx.keywords))
	copy(out, idx.keywords)
	return out
}

// Len is the number of indexed rules.
func (idx *RuleIndex) Len() int { return idx.size }

// DuplicatesDropped is the number of exact duplicate rows skipped at load.
func (idx *RuleIndex) DuplicatesDropped() int { return idx.dropped }

// NormalizeDescription normalizes a product description the same way the
// index normalized the rule specifications.
func (idx *RuleIndex) NormalizeDescription(description string) string {
	return idx.mode.Normalize(description)
}

// resolve picks the rule for one keyword given a normalized description.
func (idx *RuleIndex) resolve(keyword, description string) (domain.CommissionRule, bool) {
	for _, sr := range idx.specific[keyword] {
		if strings.Contains(description, sr.spec) {
			return sr.rule, true
		}
	}
	fb, ok := idx.fallback[keyword]
	return fb, ok
}

func ruleKey(r domain.CommissionRule) string {
	return strings.Join([]string{
		r.Keyword,
		r.Specification,
		r.ExistingRate.String(),
		r.IncrementalRate.String(),
	}, "\x1f")
}
