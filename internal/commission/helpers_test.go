package commission_test

import (
	"time"

	"github.com/shopspring/decimal"

	"commission-reconciliation/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rule(keyword, spec, existing, incremental string) domain.CommissionRule {
	return domain.CommissionRule{
		Keyword:         keyword,
		Specification:   spec,
		ExistingRate:    dec(existing),
		IncrementalRate: dec(incremental),
	}
}

type txOpt func(*domain.Transaction)

func withCategory(c string) txOpt { return func(t *domain.Transaction) { t.PrimaryCategory = c } }
func withAgent(a string) txOpt    { return func(t *domain.Transaction) { t.AgentID = a } }
func withQty(q string) txOpt      { return func(t *domain.Transaction) { t.Quantity = dec(q) } }
func withCustomer(c string) txOpt { return func(t *domain.Transaction) { t.CustomerID = c } }
func on(d time.Time) txOpt        { return func(t *domain.Transaction) { t.OrderDate = d } }

func tx(product, description string, opts ...txOpt) domain.Transaction {
	t := domain.Transaction{
		OrderDate:          day(2025, 5, 10),
		CustomerID:         "C1",
		ProductName:        product,
		ProductDescription: description,
		PrimaryCategory:    "fruit",
		SKUID:              "S-" + product,
		AgentID:            "A1",
		Quantity:           dec("10"),
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

// appleRules is the reference rulebook: a 500g rule and an "other" fallback.
func appleRules() []domain.CommissionRule {
	return []domain.CommissionRule{
		rule("apple", "500g", "0.5", "1.0"),
		rule("apple", "other", "0.3", "0.6"),
	}
}
