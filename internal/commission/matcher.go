package commission

import (
	"strings"

	"commission-reconciliation/internal/domain"
)

// MatchStats counts what happened to the input of a match pass.
type MatchStats struct {
	Input              int `json:"input"`
	Matched            int `json:"matched"`
	Unmatched          int `json:"unmatched"`            // no keyword in the product name
	Unresolved         int `json:"unresolved"`           // keyword hit without spec or fallback rule
	FilteredByCategory int `json:"filtered_by_category"` // matches dropped by the category filter
}

// RuleMatcher resolves transactions against a RuleIndex. Keyword hits are
// memoized per product name, so repeated products cost one map lookup.
type RuleMatcher struct {
	index *RuleIndex
	hits  map[string][]string
}

// NewRuleMatcher creates a matcher over idx.
func NewRuleMatcher(idx *RuleIndex) *RuleMatcher {
	return &RuleMatcher{index: idx, hits: make(map[string][]string)}
}

// Match runs a single matcher over transactions.
func Match(transactions []domain.Transaction, idx *RuleIndex, categoryFilter string) ([]domain.MatchedTransaction, MatchStats) {
	return NewRuleMatcher(idx).Match(transactions, categoryFilter)
}

// Match returns one MatchedTransaction per (transaction, keyword) that
// resolved to a rule. The category filter is applied after resolution.
func (m *RuleMatcher) Match(transactions []domain.Transaction, categoryFilter string) ([]domain.MatchedTransaction, MatchStats) {
	stats := MatchStats{Input: len(transactions)}
	category := strings.TrimSpace(categoryFilter)

	var matched []domain.MatchedTransaction
	for _, tx := range transactions {
		keywords := m.keywordsFor(tx.ProductName)
		if len(keywords) == 0 {
			stats.Unmatched++
			continue
		}

		description := m.index.NormalizeDescription(tx.ProductDescription)
		for _, kw := range keywords {
			rule, ok := m.index.resolve(kw, description)
			if !ok {
				stats.Unresolved++
				continue
			}
			if category != "" && strings.TrimSpace(tx.PrimaryCategory) != category {
				stats.FilteredByCategory++
				continue
			}
			matched = append(matched, domain.MatchedTransaction{Transaction: tx, Rule: rule, Keyword: kw})
		}
	}
	stats.Matched = len(matched)
	return matched, stats
}

func (m *RuleMatcher) keywordsFor(productName string) []string {
	name := FoldKeyword(productName)
	if hits, ok := m.hits[name]; ok {
		return hits
	}
	var hits []string
	if name != "" {
		for _, kw := range m.index.keywords {
			if strings.Contains(name, kw) {
				hits = append(hits, kw)
			}
		}
	}
	m.hits[name] = hits
	return hits
}
