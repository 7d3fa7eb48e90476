package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"commission-reconciliation/internal/domain"
)

func TestPeriod(t *testing.T) {
	p := domain.NewPeriod(
		time.Date(2025, 5, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	)

	assert.Equal(t, "[2025-05-01, 2025-05-31]", p.String())
	assert.False(t, p.Empty())
	assert.True(t, p.Contains(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 4, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	empty := domain.Period{Start: p.Start, End: p.Start.AddDate(0, 0, -1)}
	assert.True(t, empty.Empty())
	assert.False(t, empty.Contains(p.Start))
}

func TestClassifiedTransaction_Rate(t *testing.T) {
	ct := domain.ClassifiedTransaction{
		MatchedTransaction: domain.MatchedTransaction{
			Rule: domain.CommissionRule{
				ExistingRate:    decimal.RequireFromString("0.5"),
				IncrementalRate: decimal.RequireFromString("1.0"),
			},
		},
		Classification: domain.Existing,
	}
	assert.Equal(t, "0.5", ct.Rate().String())

	ct.Classification = domain.Incremental
	assert.Equal(t, "1", ct.Rate().String())
}

func TestMatchedTransaction_Identity(t *testing.T) {
	m := domain.MatchedTransaction{
		Transaction: domain.Transaction{CustomerID: "C1", ProductName: "Gala Apple"},
		Rule:        domain.CommissionRule{Keyword: "Apple"},
	}
	assert.Equal(t, domain.IdentityKey{CustomerID: "C1", Keyword: "Apple", ProductName: "Gala Apple"}, m.Identity())

	m.Keyword = "apple"
	assert.Equal(t, "apple", m.Identity().Keyword)
}

func TestErrors(t *testing.T) {
	first := &domain.ValidationError{Source: "sales.csv", Row: 4, Field: "quantity", Value: "x", Reason: "not a number"}

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "schema",
			err:      &domain.SchemaError{Source: "sales.csv", Missing: []string{"sku_id", "agent_id"}},
			sentinel: domain.ErrSchema,
			message:  "sales.csv: missing required columns: sku_id, agent_id",
		},
		{
			name:     "validation with row",
			err:      first,
			sentinel: domain.ErrValidation,
			message:  `sales.csv row 4: invalid quantity "x": not a number`,
		},
		{
			name:     "validation without row",
			err:      &domain.ValidationError{Source: "rules", Field: "rate", Value: "-1", Reason: "must not be negative"},
			sentinel: domain.ErrValidation,
			message:  `rules: invalid rate "-1": must not be negative`,
		},
		{
			name:     "config",
			err:      domain.NewConfigError("lookback days must not be negative, got %d", -3),
			sentinel: domain.ErrConfig,
			message:  "invalid configuration: lookback days must not be negative, got -3",
		},
		{
			name:     "too many rejections",
			err:      &domain.TooManyRejectionsError{Rejected: 2, Total: 10, MaxRatio: 0.05, First: first},
			sentinel: domain.ErrValidation,
			message:  "2 of 10 rows rejected, above allowed ratio 0.0500 (first: " + first.Error() + ")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", tt.err), tt.sentinel))
		})
	}
}
