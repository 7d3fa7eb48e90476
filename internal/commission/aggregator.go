package commission

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"commission-reconciliation/internal/domain"
)

// Aggregate rolls lines up per agent, sorted by agent id. Each tier total is
// rounded on its own and the grand total is their sum. The total row is the
// column-wise sum of the agent rows, not a re-aggregation of the lines.
func Aggregate(lines []domain.CommissionLine) ([]domain.AgentSummary, domain.AgentSummary) {
	byAgent := make(map[string]*domain.AgentSummary)
	for _, l := range lines {
		agent := l.Transaction.AgentID
		s, ok := byAgent[agent]
		if !ok {
			s = &domain.AgentSummary{
				AgentID:          agent,
				ExistingTotal:    decimal.Zero,
				IncrementalTotal: decimal.Zero,
			}
			byAgent[agent] = s
		}
		if l.Classification == domain.Existing {
			s.ExistingTotal = s.ExistingTotal.Add(l.Amount)
		} else {
			s.IncrementalTotal = s.IncrementalTotal.Add(l.Amount)
		}
	}

	summaries := make([]domain.AgentSummary, 0, len(byAgent))
	for _, s := range byAgent {
		s.ExistingTotal = s.ExistingTotal.Round(AmountPlaces)
		s.IncrementalTotal = s.IncrementalTotal.Round(AmountPlaces)
		s.GrandTotal = s.ExistingTotal.Add(s.IncrementalTotal)
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].AgentID < summaries[j].AgentID
	})

	return summaries, TotalRow(summaries)
}

// TotalRow sums the summary rows column by column.
func TotalRow(summaries []domain.AgentSummary) domain.AgentSummary {
	total := domain.AgentSummary{
		AgentID:          domain.TotalRowLabel,
		ExistingTotal:    decimal.Zero,
		IncrementalTotal: decimal.Zero,
		GrandTotal:       decimal.Zero,
	}
	for _, s := range summaries {
		total.ExistingTotal = total.ExistingTotal.Add(s.ExistingTotal)
		total.IncrementalTotal = total.IncrementalTotal.Add(s.IncrementalTotal)
		total.GrandTotal = total.GrandTotal.Add(s.GrandTotal)
	}
	return total
}

// VerifyTotals checks that every summary cell equals the sum of its detail
// lines and that the total row equals the column sums of the summary rows.
func VerifyTotals(lines []domain.CommissionLine, summaries []domain.AgentSummary, total domain.AgentSummary) error {
	type cell struct {
		agent string
		class domain.Classification
	}
	sums := make(map[cell]decimal.Decimal)
	for _, l := range lines {
		k := cell{l.Transaction.AgentID, l.Classification}
		sums[k] = sums[k].Add(l.Amount)
	}

	for _, s := range summaries {
		if want := sums[cell{s.AgentID, domain.Existing}]; !want.Equal(s.ExistingTotal) {
			return eris.Errorf("aggregate: agent %s existing total %s, detail sum %s", s.AgentID, s.ExistingTotal, want)
		}
		if want := sums[cell{s.AgentID, domain.Incremental}]; !want.Equal(s.IncrementalTotal) {
			return eris.Errorf("aggregate: agent %s incremental total %s, detail sum %s", s.AgentID, s.IncrementalTotal, want)
		}
		if want := s.ExistingTotal.Add(s.IncrementalTotal); !want.Equal(s.GrandTotal) {
			return eris.Errorf("aggregate: agent %s grand total %s, expected %s", s.AgentID, s.GrandTotal, want)
		}
	}

	want := TotalRow(summaries)
	if !want.ExistingTotal.Equal(total.ExistingTotal) ||
		!want.IncrementalTotal.Equal(total.IncrementalTotal) ||
		!want.GrandTotal.Equal(total.GrandTotal) {
		return eris.Errorf("aggregate: total row %s/%s/%s does not match column sums %s/%s/%s",
			total.ExistingTotal, total.IncrementalTotal, total.GrandTotal,
			want.ExistingTotal, want.IncrementalTotal, want.GrandTotal)
	}
	return nil
}
