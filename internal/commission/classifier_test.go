package commission_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commission-reconciliation/internal/commission"
	"commission-reconciliation/internal/domain"
)

var (
	bonusStart = day(2025, 5, 1)
	bonusEnd   = day(2025, 5, 31)
)

func matchAll(t *testing.T, txs ...domain.Transaction) []domain.MatchedTransaction {
	t.Helper()
	matched, _ := commission.Match(txs, mustIndex(t, appleRules()), "")
	require.Len(t, matched, len(txs))
	return matched
}

func TestBaselineWindow(t *testing.T) {
	w := commission.BaselineWindow(bonusStart, 90)
	assert.Equal(t, day(2025, 1, 31), w.Start)
	assert.Equal(t, day(2025, 4, 30), w.End)

	empty := commission.BaselineWindow(bonusStart, 0)
	assert.True(t, empty.Empty())
	assert.False(t, empty.Contains(day(2025, 4, 30)))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		history   []time.Time
		bonusDate time.Time
		want      domain.Classification
	}{
		{name: "no history", bonusDate: day(2025, 5, 10), want: domain.Incremental},
		{name: "baseline purchase", history: []time.Time{day(2025, 3, 1)}, bonusDate: day(2025, 5, 10), want: domain.Existing},
		{name: "last baseline day", history: []time.Time{day(2025, 4, 30)}, bonusDate: day(2025, 5, 10), want: domain.Existing},
		{name: "first baseline day", history: []time.Time{day(2025, 1, 31)}, bonusDate: day(2025, 5, 10), want: domain.Existing},
		{name: "before the baseline", history: []time.Time{day(2025, 1, 30)}, bonusDate: day(2025, 5, 10), want: domain.Incremental},
		{name: "earlier bonus purchase is not evidence", history: []time.Time{day(2025, 5, 1)}, bonusDate: day(2025, 5, 20), want: domain.Incremental},
		{name: "bonus start is in the bonus period", bonusDate: day(2025, 5, 1), want: domain.Incremental},
		{name: "bonus end is in the bonus period", bonusDate: day(2025, 5, 31), want: domain.Incremental},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []domain.Transaction
			for _, d := range tt.history {
				txs = append(txs, tx("apple", "500g", on(d), withQty("1")))
			}
			txs = append(txs, tx("apple", "500g", on(tt.bonusDate)))

			classified, _, err := commission.Classify(matchAll(t, txs...), bonusStart, bonusEnd, 90)
			require.NoError(t, err)

			var found bool
			for _, c := range classified {
				if c.Transaction.OrderDate.Equal(tt.bonusDate) && c.Transaction.Quantity.Equal(dec("10")) {
					assert.Equal(t, tt.want, c.Classification)
					found = true
				}
			}
			assert.True(t, found, "bonus transaction not classified")
		})
	}
}

func TestClassify_IdentityKey(t *testing.T) {
	matched := matchAll(t,
		tx("apple", "500g", on(day(2025, 4, 1))),
		tx("apple", "500g", on(day(2025, 5, 2))),
		tx("apple", "500g", on(day(2025, 5, 3)), withCustomer("C2")),
		tx("apple", "1kg", on(day(2025, 5, 4))),
		tx("Gala apple", "500g", on(day(2025, 5, 5))),
	)

	classified, stats, err := commission.Classify(matched, bonusStart, bonusEnd, 90)
	require.NoError(t, err)
	require.Len(t, classified, 4)

	// Same customer and product with the fallback rule still shares the keyword.
	assert.Equal(t, domain.Existing, classified[0].Classification)
	assert.Equal(t, domain.Incremental, classified[1].Classification)
	assert.Equal(t, domain.Existing, classified[2].Classification)
	assert.Equal(t, domain.Incremental, classified[3].Classification)
	assert.Equal(t, 1, stats.Baseline)
	assert.Equal(t, 2, stats.Existing)
	assert.Equal(t, 2, stats.Incremental)
}

func TestClassify_OutsideWindows(t *testing.T) {
	matched := matchAll(t,
		tx("apple", "500g", on(day(2024, 12, 1))),
		tx("apple", "500g", on(day(2025, 6, 1))),
		tx("apple", "500g", on(day(2025, 5, 15))),
	)

	classified, stats, err := commission.Classify(matched, bonusStart, bonusEnd, 90)
	require.NoError(t, err)
	assert.Len(t, classified, 1)
	assert.Equal(t, 2, stats.OutsideWindows)
}

func TestClassify_SingleDayPeriodAndZeroLookback(t *testing.T) {
	matched := matchAll(t,
		tx("apple", "500g", on(day(2025, 4, 30))),
		tx("apple", "500g", on(day(2025, 5, 1))),
	)

	classified, stats, err := commission.Classify(matched, bonusStart, bonusStart, 0)
	require.NoError(t, err)
	require.Len(t, classified, 1)
	assert.Equal(t, domain.Incremental, classified[0].Classification)
	assert.Equal(t, 0, stats.Baseline)
}

func TestClassify_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		lookback int
	}{
		{name: "end before start", start: bonusEnd, end: bonusStart, lookback: 90},
		{name: "negative lookback", start: bonusStart, end: bonusEnd, lookback: -1},
		{name: "missing start", end: bonusEnd, lookback: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := commission.Classify(nil, tt.start, tt.end, tt.lookback)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	a := tx("apple", "500g", on(day(2025, 5, 2)))
	b := tx("apple", "500g", on(day(2025, 5, 2)), withQty("3"))
	dupA := a
	dupA.Row = 99

	matched := matchAll(t, a, b, dupA)
	once, removed := commission.Deduplicate(matched)
	require.Len(t, once, 2)
	assert.Equal(t, 1, removed)

	twice, removedAgain := commission.Deduplicate(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 0, removedAgain)

	classified, stats, err := commission.Classify(matched, bonusStart, bonusEnd, 90)
	require.NoError(t, err)
	assert.Len(t, classified, 2)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
}

func TestClassify_KeywordSpellingSharesIdentity(t *testing.T) {
	idx := mustIndex(t, []domain.CommissionRule{
		rule("Apple", "500g", "0.5", "1.0"),
		rule("apple", "other", "0.3", "0.6"),
	})
	matched, _ := commission.Match([]domain.Transaction{
		tx("apple", "500g", on(day(2025, 4, 1)), withQty("1")),
		tx("apple", "unknown pack", on(day(2025, 5, 10))),
	}, idx, "")
	require.Len(t, matched, 2)
	assert.Equal(t, matched[0].Identity(), matched[1].Identity())

	classified, stats, err := commission.Classify(matched, bonusStart, bonusEnd, 90)
	require.NoError(t, err)
	require.Len(t, classified, 1)
	assert.Equal(t, domain.Existing, classified[0].Classification)
	assert.True(t, classified[0].Rule.Fallback)
	assert.Equal(t, 1, stats.Existing)
}
