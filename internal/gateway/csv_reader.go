package gateway

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// readTable returns every record of a .csv or .xlsx file, header included.
func readTable(ctx context.Context, path, sheetName string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path, sheetName)
	case ".csv", ".txt", "":
		return readCSV(ctx, path)
	default:
		return nil, eris.Errorf("gateway: unsupported file type %q for %s", filepath.Ext(path), path)
	}
}

// readCSV reads a delimited file. Ragged rows are allowed; short rows read
// as empty cells for the missing columns.
func readCSV(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gateway: open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "gateway: read cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "gateway: read record from %s", path)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("gateway: %s has no header row", path)
	}
	return records, nil
}
