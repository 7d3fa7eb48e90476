package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TotalRowLabel is the agent_id of the synthetic grand-total row.
const TotalRowLabel = "Total"

// IsReservedAgentID reports whether id would be confused with the total row.
func IsReservedAgentID(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), TotalRowLabel)
}

// AgentSummary holds the commission rollup for a single agent.
type AgentSummary struct {
	AgentID          string          `json:"agent_id"`
	ExistingTotal    decimal.Decimal `json:"existing_total"`
	IncrementalTotal decimal.Decimal `json:"incremental_total"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// RunCounters tracks how many rows were dropped at each stage of a run.
type RunCounters struct {
	TransactionsRead   int `json:"transactions_read"`
	RulesRead          int `json:"rules_read"`
	RejectedRows       int `json:"rejected_rows"`
	Unmatched          int `json:"unmatched"`
	Unresolved         int `json:"unresolved"`
	FilteredByCategory int `json:"filtered_by_category"`
	DuplicatesRemoved  int `json:"duplicates_removed"`
	OutsideWindows     int `json:"outside_windows"`
	BaselineRows       int `json:"baseline_rows"`
	Lines              int `json:"lines"`
}

// CommissionReport is the top-level result of one engine run.
type CommissionReport struct {
	RunID          string           `json:"run_id"`
	BonusPeriod    Period           `json:"bonus_period"`
	BaselinePeriod Period           `json:"baseline_period"`
	CategoryFilter string           `json:"category_filter,omitempty"`
	Counters       RunCounters      `json:"counters"`
	Summary        []AgentSummary   `json:"summary"`
	Total          AgentSummary     `json:"total"`
	Detail         []CommissionLine `json:"detail"`

	// Rejected lists the rows excluded for invalid values.
	Rejected []*ValidationError `json:"rejected,omitempty"`
}

// AgentCount returns the number of agents with at least one line.
func (r *CommissionReport) AgentCount() int {
	return len(r.Summary)
}
