package commission

import (
	"strings"
	"time"

	"commission-reconciliation/internal/domain"
)

// DefaultLookbackDays is the baseline window length used when none is configured.
const DefaultLookbackDays = 90

// ClassifyStats counts how matched rows were partitioned.
type ClassifyStats struct {
	Input             int `json:"input"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Bonus             int `json:"bonus"`
	Baseline          int `json:"baseline"`
	OutsideWindows    int `json:"outside_windows"`
	Existing          int `json:"existing"`
	Incremental       int `json:"incremental"`
}

// ValidateWindow checks the bonus period bounds and the lookback length.
func ValidateWindow(bonusStart, bonusEnd time.Time, lookbackDays int) error {
	if bonusStart.IsZero() || bonusEnd.IsZero() {
		return domain.NewConfigError("bonus period start and end are required")
	}
	if domain.Day(bonusEnd).Before(domain.Day(bonusStart)) {
		return domain.NewConfigError("bonus period end %s is before start %s",
			bonusEnd.Format(time.DateOnly), bonusStart.Format(time.DateOnly))
	}
	if lookbackDays < 0 {
		return domain.NewConfigError("lookback days must not be negative, got %d", lookbackDays)
	}
	return nil
}

// BaselineWindow returns [bonusStart-lookbackDays, bonusStart-1 day]. With a
// zero lookback the window is empty.
func BaselineWindow(bonusStart time.Time, lookbackDays int) domain.Period {
	start := domain.Day(bonusStart)
	return domain.Period{
		Start: start.AddDate(0, 0, -lookbackDays),
		End:   start.AddDate(0, 0, -1),
	}
}

// Classify labels every bonus-period match existing or incremental. An
// identity key (customer, keyword, product) is existing iff it occurs in the
// baseline window; rows outside both windows are ignored.
func Classify(matched []domain.MatchedTransaction, bonusStart, bonusEnd time.Time, lookbackDays int) ([]domain.ClassifiedTransaction, ClassifyStats, error) {
	if err := ValidateWindow(bonusStart, bonusEnd, lookbackDays); err != nil {
		return nil, ClassifyStats{}, err
	}

	stats := ClassifyStats{Input: len(matched)}
	rows, removed := Deduplicate(matched)
	stats.DuplicatesRemoved = removed

	bonus := domain.NewPeriod(bonusStart, bonusEnd)
	baseline := BaselineWindow(bonusStart, lookbackDays)

	var inBonus []domain.MatchedTransaction
	evidence := make(map[domain.IdentityKey]struct{})
	for _, m := range rows {
		switch {
		case bonus.Contains(m.Transaction.OrderDate):
			inBonus = append(inBonus, m)
		case baseline.Contains(m.Transaction.OrderDate):
			stats.Baseline++
			evidence[m.Identity()] = struct{}{}
		default:
			stats.OutsideWindows++
		}
	}
	stats.Bonus = len(inBonus)

	labels := make(map[domain.IdentityKey]domain.Classification)
	classified := make([]domain.ClassifiedTransaction, 0, len(inBonus))
	for _, m := range inBonus {
		key := m.Identity()
		label, ok := labels[key]
		if !ok {
			label = domain.Incremental
			if _, seen := evidence[key]; seen {
				label = domain.Existing
			}
			labels[key] = label
		}
		if label == domain.Existing {
			stats.Existing++
		} else {
			stats.Incremental++
		}
		classified = append(classified, domain.ClassifiedTransaction{MatchedTransaction: m, Classification: label})
	}
	return classified, stats, nil
}

// Deduplicate removes rows identical on every transaction field and on the
// resolved rule, keeping the first occurrence. Applying it twice yields the
// same result as applying it once.
func Deduplicate(matched []domain.MatchedTransaction) ([]domain.MatchedTransaction, int) {
	seen := make(map[string]struct{}, len(matched))
	out := make([]domain.MatchedTransaction, 0, len(matched))
	for _, m := range matched {
		key := matchKey(m)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out, len(matched) - len(out)
}

func matchKey(m domain.MatchedTransaction) string {
	tx := m.Transaction
	return strings.Join([]string{
		domain.Day(tx.OrderDate).Format(time.DateOnly),
		tx.CustomerID,
		tx.ProductName,
		tx.ProductDescription,
		tx.PrimaryCategory,
		tx.SKUID,
		tx.AgentID,
		tx.Quantity.String(),
		ruleKey(m.Rule),
	}, "\x1f")
}
