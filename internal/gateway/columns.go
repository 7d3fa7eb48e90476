package gateway

import (
	"strings"

	"golang.org/x/text/cases"

	"commission-reconciliation/internal/domain"
)

// columnIndex maps canonical column names to their position in a header row.
type columnIndex map[string]int

// resolveColumns finds every required canonical column in header, trying the
// canonical name first and then its aliases. Header comparison ignores case
// and surrounding whitespace.
func resolveColumns(source string, header []string, columns ColumnMap, required []string) (columnIndex, error) {
	fold := cases.Fold()
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := fold.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	idx := make(columnIndex, len(required))
	var missing []string
	for _, name := range required {
		found := false
		for _, candidate := range append([]string{name}, columns[name]...) {
			if pos, ok := positions[fold.String(strings.TrimSpace(candidate))]; ok {
				idx[name] = pos
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Source: source, Missing: missing}
	}
	return idx, nil
}

// get returns the trimmed cell for a canonical column, or "" when the row is short.
func (c columnIndex) get(record []string, name string) string {
	pos, ok := c[name]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
