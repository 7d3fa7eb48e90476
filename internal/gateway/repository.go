package gateway

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"commission-reconciliation/internal/domain"
)

// TableRepository reads transactions and rulebooks from CSV, XLSX or YAML files.
type TableRepository struct {
	opts ReaderOptions
}

// NewTableRepository creates a repository; zero-valued options fall back to defaults.
func NewTableRepository(opts ReaderOptions) *TableRepository {
	return &TableRepository{opts: opts.withDefaults()}
}

// GetTransactions parses a transactions table. A missing required column
// fails the whole file; rows with malformed values are rejected and counted.
func (r *TableRepository) GetTransactions(ctx context.Context, path string) (*domain.TransactionBatch, error) {
	source := filepath.Base(path)
	records, err := readTable(ctx, path, r.opts.SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "could not read transactions")
	}

	cols, err := resolveColumns(source, records[0], r.opts.TransactionColumns, TransactionColumns)
	if err != nil {
		return nil, err
	}
	if err := r.checkSize(source, len(records)-1); err != nil {
		return nil, err
	}

	batch := &domain.TransactionBatch{Source: source}
	for i, record := range records[1:] {
		if blankRecord(record) {
			continue
		}
		line := i + 2
		batch.Rows++

		rawDate := cols.get(record, ColOrderDate)
		date, err := parseDate(rawDate, r.opts.DateLayouts)
		if err != nil {
			batch.Rejected = append(batch.Rejected, rowError(source, line, ColOrderDate, rawDate, err))
			continue
		}
		rawQty := cols.get(record, ColQuantity)
		qty, err := parseQuantity(rawQty)
		if err != nil {
			batch.Rejected = append(batch.Rejected, rowError(source, line, ColQuantity, rawQty, err))
			continue
		}
		agent := cols.get(record, ColAgentID)
		if domain.IsReservedAgentID(agent) {
			batch.Rejected = append(batch.Rejected, rowError(source, line, ColAgentID, agent, errReservedAgent))
			continue
		}

		batch.Transactions = append(batch.Transactions, domain.Transaction{
			OrderDate:          date,
			CustomerID:         cols.get(record, ColCustomerID),
			ProductName:        cols.get(record, ColProductName),
			ProductDescription: cols.get(record, ColProductDescription),
			PrimaryCategory:    cols.get(record, ColPrimaryCategory),
			SKUID:              cols.get(record, ColSKUID),
			AgentID:            agent,
			Quantity:           qty,
			Row:                line,
		})
	}
	return batch, nil
}

// GetRules parses a rulebook. YAML files use the rulebook document format;
// anything else is read as a table.
func (r *TableRepository) GetRules(ctx context.Context, path string) (*domain.RuleBatch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAMLRules(path, r.opts.RateUnit)
	}

	source := filepath.Base(path)
	records, err := readTable(ctx, path, r.opts.SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "could not read rulebook")
	}

	cols, err := resolveColumns(source, records[0], r.opts.RuleColumns, RuleColumns)
	if err != nil {
		return nil, err
	}
	if err := r.checkSize(source, len(records)-1); err != nil {
		return nil, err
	}

	batch := &domain.RuleBatch{Source: source}
	for i, record := range records[1:] {
		if blankRecord(record) {
			continue
		}
		batch.Rows++
		rule, verr := buildRule(source, i+2, rawRule{
			Keyword:         cols.get(record, ColKeyword),
			Specification:   cols.get(record, ColSpecification),
			ExistingRate:    cols.get(record, ColExistingRate),
			IncrementalRate: cols.get(record, ColIncrementalRate),
		}, r.opts.RateUnit)
		if verr != nil {
			batch.Rejected = append(batch.Rejected, verr)
			continue
		}
		batch.Rules = append(batch.Rules, rule)
	}
	return batch, nil
}

func (r *TableRepository) checkSize(source string, rows int) error {
	if r.opts.MaxRows > 0 && rows > r.opts.MaxRows {
		return eris.Errorf("gateway: %s has %d rows, limit is %d", source, rows, r.opts.MaxRows)
	}
	return nil
}

// rawRule is a rulebook row before validation.
type rawRule struct {
	Keyword         string `yaml:"keyword"`
	Specification   string `yaml:"specification"`
	ExistingRate    string `yaml:"existing_rate"`
	IncrementalRate string `yaml:"incremental_rate"`
}

func buildRule(source string, row int, raw rawRule, unit RateUnit) (domain.CommissionRule, *domain.ValidationError) {
	keyword := strings.TrimSpace(raw.Keyword)
	if keyword == "" {
		return domain.CommissionRule{}, rowError(source, row, ColKeyword, raw.Keyword, eris.New("empty keyword"))
	}
	spec := strings.TrimSpace(raw.Specification)
	if spec == "" {
		return domain.CommissionRule{}, rowError(source, row, ColSpecification, raw.Specification, eris.New("empty specification"))
	}
	existing, err := ParseRate(raw.ExistingRate, unit)
	if err != nil {
		return domain.CommissionRule{}, rowError(source, row, ColExistingRate, raw.ExistingRate, err)
	}
	incremental, err := ParseRate(raw.IncrementalRate, unit)
	if err != nil {
		return domain.CommissionRule{}, rowError(source, row, ColIncrementalRate, raw.IncrementalRate, err)
	}
	return domain.CommissionRule{
		Keyword:         keyword,
		Specification:   spec,
		ExistingRate:    existing,
		IncrementalRate: incremental,
	}, nil
}
