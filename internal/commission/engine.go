// Package commission computes bonus payouts for sales transactions against a
// keyword/specification rulebook.
//
// The stages run strictly in order and each one is usable on its own:
//
//	LoadRules -> Match -> Classify -> ComputeLines -> Aggregate
//
// Engine.Run threads them together and returns either a complete
// CommissionReport or an error.
package commission

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"commission-reconciliation/internal/domain"
)

// Params are the explicit inputs of one run.
type Params struct {
	RunID          string
	BonusStart     time.Time
	BonusEnd       time.Time
	LookbackDays   int
	CategoryFilter string
	FallbackTokens []string
	SpecMatch      SpecMode
}

// Validate reports a ConfigError for invalid period bounds or lookback.
func (p Params) Validate() error {
	return ValidateWindow(p.BonusStart, p.BonusEnd, p.LookbackDays)
}

// Engine runs the commission pipeline over an in-memory batch.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger falls back to the global zap logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.L()
	}
	return &Engine{logger: logger}
}

// Run computes the detail lines and agent summaries for one batch.
func (e *Engine) Run(transactions []domain.Transaction, rules []domain.CommissionRule, p Params) (*domain.CommissionReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.RunID == "" {
		p.RunID = uuid.NewString()
	}
	log := e.logger.With(zap.String("run_id", p.RunID))

	idx, err := LoadRules(rules, RuleOptions{FallbackTokens: p.FallbackTokens, SpecMatch: p.SpecMatch})
	if err != nil {
		return nil, err
	}
	log.Info("rulebook indexed",
		zap.Int("rules", idx.Len()),
		zap.Int("keywords", len(idx.keywords)),
		zap.Int("duplicates_dropped", idx.DuplicatesDropped()),
	)

	matched, mstats := Match(transactions, idx, p.CategoryFilter)
	log.Info("transactions matched",
		zap.Int("input", mstats.Input),
		zap.Int("matched", mstats.Matched),
		zap.Int("unmatched", mstats.Unmatched),
		zap.Int("unresolved", mstats.Unresolved),
		zap.Int("filtered_by_category", mstats.FilteredByCategory),
	)

	classified, cstats, err := Classify(matched, p.BonusStart, p.BonusEnd, p.LookbackDays)
	if err != nil {
		return nil, err
	}
	log.Info("transactions classified",
		zap.Int("bonus", cstats.Bonus),
		zap.Int("baseline", cstats.Baseline),
		zap.Int("existing", cstats.Existing),
		zap.Int("incremental", cstats.Incremental),
		zap.Int("duplicates_removed", cstats.DuplicatesRemoved),
	)

	lines, rejected := ComputeLines(classified)
	for _, r := range rejected {
		log.Debug("line rejected", zap.Error(r))
	}

	summaries, total := Aggregate(lines)
	if err := VerifyTotals(lines, summaries, total); err != nil {
		return nil, err
	}
	log.Info("commission aggregated",
		zap.Int("agents", len(summaries)),
		zap.Int("lines", len(lines)),
		zap.String("grand_total", total.GrandTotal.StringFixed(AmountPlaces)),
	)

	return &domain.CommissionReport{
		RunID:          p.RunID,
		BonusPeriod:    domain.NewPeriod(p.BonusStart, p.BonusEnd),
		BaselinePeriod: BaselineWindow(p.BonusStart, p.LookbackDays),
		CategoryFilter: p.CategoryFilter,
		Counters: domain.RunCounters{
			TransactionsRead:   len(transactions),
			RulesRead:          len(rules),
			RejectedRows:       len(rejected),
			Unmatched:          mstats.Unmatched,
			Unresolved:         mstats.Unresolved,
			FilteredByCategory: mstats.FilteredByCategory,
			DuplicatesRemoved:  cstats.DuplicatesRemoved,
			OutsideWindows:     cstats.OutsideWindows,
			BaselineRows:       cstats.Baseline,
			Lines:              len(lines),
		},
		Summary:  summaries,
		Total:    total,
		Detail:   lines,
		Rejected: rejected,
	}, nil
}
