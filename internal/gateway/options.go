package gateway

import (
	"strings"

	"commission-reconciliation/internal/domain"
)

// Canonical transaction columns.
const (
	ColOrderDate          = "order_date"
	ColProductDescription = "product_description"
	ColProductName        = "product_name"
	ColPrimaryCategory    = "primary_category"
	ColCustomerID         = "customer_id"
	ColSKUID              = "sku_id"
	ColAgentID            = "agent_id"
	ColQuantity           = "quantity"
)

// Canonical rulebook columns.
const (
	ColKeyword         = "keyword"
	ColSpecification   = "specification"
	ColExistingRate    = "existing_rate"
	ColIncrementalRate = "incremental_rate"
)

// TransactionColumns lists the required transaction columns in output order.
var TransactionColumns = []string{
	ColOrderDate, ColProductDescription, ColProductName, ColPrimaryCategory,
	ColCustomerID, ColSKUID, ColAgentID, ColQuantity,
}

// RuleColumns lists the required rulebook columns.
var RuleColumns = []string{ColKeyword, ColSpecification, ColExistingRate, ColIncrementalRate}

// ColumnMap maps a canonical column name to the header aliases accepted for it.
// The canonical name itself is always accepted.
type ColumnMap map[string][]string

// DefaultTransactionColumns accepts the English canonical headers plus the
// headers used by the sales export.
func DefaultTransactionColumns() ColumnMap {
	return ColumnMap{
		ColOrderDate:          {"订单日期", "下单时间", "date"},
		ColProductDescription: {"商品描述", "description"},
		ColProductName:        {"商品名称", "product"},
		ColPrimaryCategory:    {"一级类目", "category"},
		ColCustomerID:         {"客户名称", "customer"},
		ColSKUID:              {"sku", "SKU"},
		ColAgentID:            {"bd_name", "BD", "agent"},
		ColQuantity:           {"销量", "qty"},
	}
}

// DefaultRuleColumns accepts the canonical rulebook headers and the bonus sheet headers.
func DefaultRuleColumns() ColumnMap {
	return ColumnMap{
		ColKeyword:         {"关键词"},
		ColSpecification:   {"规格", "spec"},
		ColExistingRate:    {"存量奖金", "存量佣金"},
		ColIncrementalRate: {"增量奖金", "增量佣金"},
	}
}

// DefaultDateLayouts are tried in order when parsing order dates.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// RateUnit states how plain numeric rates in the rulebook are expressed.
type RateUnit string

const (
	RateFraction RateUnit = "fraction"
	RatePercent  RateUnit = "percent"
)

// ParseRateUnit validates a configured rate unit. Empty means fraction.
func ParseRateUnit(s string) (RateUnit, error) {
	switch u := RateUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case "", RateFraction:
		return RateFraction, nil
	case RatePercent:
		return RatePercent, nil
	default:
		return "", domain.NewConfigError("unknown rate unit %q (want fraction or percent)", s)
	}
}

// ReaderOptions configures TableRepository.
type ReaderOptions struct {
	TransactionColumns ColumnMap
	RuleColumns        ColumnMap
	DateLayouts        []string
	RateUnit           RateUnit
	MaxRows            int    // 0 disables the limit
	SheetName          string // xlsx sheet to read; first sheet when empty
}

// DefaultReaderOptions returns the options used when nothing is configured.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		TransactionColumns: DefaultTransactionColumns(),
		RuleColumns:        DefaultRuleColumns(),
		DateLayouts:        DefaultDateLayouts,
		RateUnit:           RateFraction,
	}
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	d := DefaultReaderOptions()
	if o.TransactionColumns == nil {
		o.TransactionColumns = d.TransactionColumns
	}
	if o.RuleColumns == nil {
		o.RuleColumns = d.RuleColumns
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = d.DateLayouts
	}
	if o.RateUnit == "" {
		o.RateUnit = d.RateUnit
	}
	return o
}
