package usecase

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"commission-reconciliation/internal/commission"
	"commission-reconciliation/internal/domain"
)

// DefaultMaxInvalidRatio is the share of malformed rows tolerated per input.
const DefaultMaxInvalidRatio = 0.05

// CommissionUseCase orchestrates loading the inputs and running the engine.
type CommissionUseCase struct {
	repo            TransactionRepository
	engine          *commission.Engine
	maxInvalidRatio float64
}

// NewCommissionUseCase creates a new instance of the usecase.
func NewCommissionUseCase(repo TransactionRepository, engine *commission.Engine, maxInvalidRatio float64) *CommissionUseCase {
	if engine == nil {
		engine = commission.NewEngine(nil)
	}
	return &CommissionUseCase{repo: repo, engine: engine, maxInvalidRatio: maxInvalidRatio}
}

// InputCheck summarises a dry validation of both inputs.
type InputCheck struct {
	TransactionRows   int                       `json:"transaction_rows"`
	ValidTransactions int                       `json:"valid_transactions"`
	RuleRows          int                       `json:"rule_rows"`
	ValidRules        int                       `json:"valid_rules"`
	Keywords          int                       `json:"keywords"`
	Rejected          []*domain.ValidationError `json:"rejected,omitempty"`
}

// Calculate loads both inputs and computes the commission report. Config
// errors are reported before any file is read; no report is returned when
// too many rows are rejected.
func (uc *CommissionUseCase) Calculate(ctx context.Context, transactionsPath, rulesPath string, params commission.Params) (*domain.CommissionReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	txBatch, ruleBatch, err := uc.load(ctx, transactionsPath, rulesPath)
	if err != nil {
		return nil, err
	}
	if err := uc.checkRejections(ruleBatch.Rows, ruleBatch.Rejected); err != nil {
		return nil, err
	}

	report, err := uc.engine.Run(txBatch.Transactions, ruleBatch.Rules, params)
	if err != nil {
		return nil, err
	}

	rejected := append(append([]*domain.ValidationError{}, txBatch.Rejected...), report.Rejected...)
	if err := uc.checkRejections(txBatch.Rows, rejected); err != nil {
		return nil, err
	}

	report.Rejected = append(rejected, ruleBatch.Rejected...)
	report.Counters.TransactionsRead = txBatch.Rows
	report.Counters.RulesRead = ruleBatch.Rows
	report.Counters.RejectedRows = len(report.Rejected)
	return report, nil
}

// Check loads and validates both inputs without computing commissions.
func (uc *CommissionUseCase) Check(ctx context.Context, transactionsPath, rulesPath string, opts commission.RuleOptions) (*InputCheck, error) {
	txBatch, ruleBatch, err := uc.load(ctx, transactionsPath, rulesPath)
	if err != nil {
		return nil, err
	}
	if err := uc.checkRejections(txBatch.Rows, txBatch.Rejected); err != nil {
		return nil, err
	}
	if err := uc.checkRejections(ruleBatch.Rows, ruleBatch.Rejected); err != nil {
		return nil, err
	}

	idx, err := commission.LoadRules(ruleBatch.Rules, opts)
	if err != nil {
		return nil, err
	}

	return &InputCheck{
		TransactionRows:   txBatch.Rows,
		ValidTransactions: len(txBatch.Transactions),
		RuleRows:          ruleBatch.Rows,
		ValidRules:        idx.Len(),
		Keywords:          len(idx.Keywords()),
		Rejected:          append(append([]*domain.ValidationError{}, txBatch.Rejected...), ruleBatch.Rejected...),
	}, nil
}

// load reads the transactions and the rulebook in parallel.
func (uc *CommissionUseCase) load(ctx context.Context, transactionsPath, rulesPath string) (*domain.TransactionBatch, *domain.RuleBatch, error) {
	var (
		txBatch   *domain.TransactionBatch
		ruleBatch *domain.RuleBatch
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := uc.repo.GetTransactions(gCtx, transactionsPath)
		if err != nil {
			return passThrough(err, "could not get transactions")
		}
		txBatch = b
		return nil
	})
	g.Go(func() error {
		b, err := uc.repo.GetRules(gCtx, rulesPath)
		if err != nil {
			return passThrough(err, "could not get rules")
		}
		ruleBatch = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	zap.L().Info("inputs loaded",
		zap.String("transactions", txBatch.Source),
		zap.Int("transaction_rows", txBatch.Rows),
		zap.Int("transactions_rejected", len(txBatch.Rejected)),
		zap.String("rules", ruleBatch.Source),
		zap.Int("rule_rows", ruleBatch.Rows),
		zap.Int("rules_rejected", len(ruleBatch.Rejected)),
	)
	return txBatch, ruleBatch, nil
}

func (uc *CommissionUseCase) checkRejections(total int, rejected []*domain.ValidationError) error {
	if total == 0 || len(rejected) == 0 {
		return nil
	}
	if float64(len(rejected))/float64(total) <= uc.maxInvalidRatio {
		return nil
	}
	return &domain.TooManyRejectionsError{
		Rejected: len(rejected),
		Total:    total,
		MaxRatio: uc.maxInvalidRatio,
		First:    rejected[0],
	}
}

// passThrough keeps domain errors unwrapped so callers can match them with
// errors.As, and adds context to everything else.
func passThrough(err error, msg string) error {
	switch err.(type) {
	case *domain.SchemaError, *domain.ConfigError, *domain.ValidationError:
		return err
	}
	return eris.Wrap(err, msg)
}
