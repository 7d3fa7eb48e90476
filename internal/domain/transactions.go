package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification labels a customer-product relationship within the bonus period.
type Classification string

const (
	Existing    Classification = "existing"
	Incremental Classification = "incremental"
)

// Transaction represents one sales-order line as delivered by the ingestion layer.
type Transaction struct {
	OrderDate          time.Time       `json:"order_date"`
	CustomerID         string          `json:"customer_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description"`
	PrimaryCategory    string          `json:"primary_category"`
	SKUID              string          `json:"sku_id"`
	AgentID            string          `json:"agent_id"`
	Quantity           decimal.Decimal `json:"quantity"`

	// Row is the line in the source file (header is line 1); 0 when built in memory.
	Row int `json:"-"`
}

// CommissionRule is one row of the rulebook.
type CommissionRule struct {
	Keyword         string          `json:"keyword"`
	Specification   string          `json:"specification"`
	ExistingRate    decimal.Decimal `json:"existing_rate"`
	IncrementalRate decimal.Decimal `json:"incremental_rate"`

	// Fallback is set by the rule index when Specification is a fallback token.
	Fallback bool `json:"fallback"`
}

// MatchedTransaction pairs a transaction with the single rule resolved for one keyword.
type MatchedTransaction struct {
	Transaction Transaction    `json:"transaction"`
	Rule        CommissionRule `json:"rule"`

	// Keyword is the folded keyword the rule index matched on. Rules that
	// spell a keyword differently share it.
	Keyword string `json:"keyword"`
}

// IdentityKey is the composite key used for existing/incremental classification.
type IdentityKey struct {
	CustomerID  string
	Keyword     string
	ProductName string
}

// Identity returns the classification key of a matched transaction. The
// folded Keyword is used when set, the rule's spelling otherwise.
func (m MatchedTransaction) Identity() IdentityKey {
	keyword := m.Keyword
	if keyword == "" {
		keyword = m.Rule.Keyword
	}
	return IdentityKey{
		CustomerID:  m.Transaction.CustomerID,
		Keyword:     keyword,
		ProductName: m.Transaction.ProductName,
	}
}

// ClassifiedTransaction is a bonus-period match labeled existing or incremental.
type ClassifiedTransaction struct {
	MatchedTransaction
	Classification Classification `json:"classification"`
}

// Rate returns the rate that applies to the transaction's classification.
func (c ClassifiedTransaction) Rate() decimal.Decimal {
	if c.Classification == Existing {
		return c.Rule.ExistingRate
	}
	return c.Rule.IncrementalRate
}

// CommissionLine is a classified transaction with its computed payout.
type CommissionLine struct {
	ClassifiedTransaction
	Amount decimal.Decimal `json:"amount"`
}
