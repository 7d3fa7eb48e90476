package gateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"commission-reconciliation/internal/domain"
)

var (
	hundred        = decimal.NewFromInt(100)
	excelEpoch     = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	maxExcelSerial = 2958465.0 // 9999-12-31

	errReservedAgent = eris.New("reserved for the total row")
)

// parseDate tries every layout in order, then falls back to an Excel serial
// day number as produced by spreadsheets that lost their date format.
func parseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, eris.New("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Day(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}
	return time.Time{}, eris.Errorf("unrecognised date format")
}

// parseQuantity accepts plain decimals with optional thousands separators.
func parseQuantity(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Decimal{}, eris.New("empty quantity")
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, eris.Wrap(err, "not a number")
	}
	if q.IsNegative() {
		return decimal.Decimal{}, eris.New("must not be negative")
	}
	return q, nil
}

// ParseRate converts a rulebook rate to a decimal fraction. A trailing "%"
// always means percent; otherwise unit decides. Magnitude is never used to
// guess the unit.
func ParseRate(raw string, unit RateUnit) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "¥￥$")
	s = strings.ReplaceAll(s, ",", "")

	percent := unit == RatePercent
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		percent = true
	}
	if s == "" {
		return decimal.Decimal{}, eris.New("empty rate")
	}

	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, eris.Wrap(err, "not a number")
	}
	if percent {
		rate = rate.Div(hundred)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, eris.New("must not be negative")
	}
	return rate, nil
}

func rowError(source string, row int, field, value string, err error) *domain.ValidationError {
	return &domain.ValidationError{
		Source: source,
		Row:    row,
		Field:  field,
		Value:  value,
		Reason: err.Error(),
	}
}
