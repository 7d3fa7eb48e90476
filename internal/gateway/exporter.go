package gateway

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"

	"commission-reconciliation/internal/domain"
)

// Export formats understood by ReportWriter.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Detail"
	moneyFormat  = "0.00"
	tmpSuffix    = ".tmp"
)

// DetailHeader is the column order of the line-level detail table.
var DetailHeader = []string{
	"agent_id", "customer_id", "product_name", "keyword", "specification",
	"quantity", "classification", "amount",
}

// SummaryHeader is the column order of the per-agent summary table.
var SummaryHeader = []string{"agent_id", "existing_total", "incremental_total", "grand_total"}

// ReportWriter exports a commission report as delimited text and as a workbook.
type ReportWriter struct{}

// NewReportWriter creates a writer.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// Write exports report into dir in each requested format and returns the
// paths written. Every file is first written under a temporary name and only
// renamed into place once all formats succeeded; on error nothing is left
// behind.
func (w *ReportWriter) Write(dir string, formats []string, report *domain.CommissionReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "gateway: create export dir %s", dir)
	}

	base := filepath.Join(dir, BaseName(report))
	var staged []string
	committed := false
	defer func() {
		if !committed {
			for _, path := range staged {
				os.Remove(path + tmpSuffix)
			}
		}
	}()

	for _, format := range formats {
		switch format {
		case FormatCSV:
			for _, t := range csvTables(base, report) {
				staged = append(staged, t.path)
				if err := writeCSVFile(t.path+tmpSuffix, t.rows); err != nil {
					return nil, err
				}
			}
		case FormatXLSX:
			path := base + ".xlsx"
			staged = append(staged, path)
			if err := w.WriteXLSX(path+tmpSuffix, report); err != nil {
				return nil, err
			}
		default:
			return nil, eris.Errorf("gateway: unknown export format %q", format)
		}
	}

	for i, path := range staged {
		if err := os.Rename(path+tmpSuffix, path); err != nil {
			for _, done := range staged[:i] {
				os.Remove(done)
			}
			return nil, eris.Wrapf(err, "gateway: move %s into place", path)
		}
	}
	committed = true
	return staged, nil
}

// BaseName is the export file stem, e.g. commission_2025-05-01_2025-05-31.
func BaseName(report *domain.CommissionReport) string {
	return "commission_" + report.BonusPeriod.Start.Format(time.DateOnly) +
		"_" + report.BonusPeriod.End.Format(time.DateOnly)
}

type csvTable struct {
	path string
	rows [][]string
}

func csvTables(base string, report *domain.CommissionReport) []csvTable {
	return []csvTable{
		{path: base + "_summary.csv", rows: SummaryRows(report)},
		{path: base + "_detail.csv", rows: DetailRows(report)},
	}
}

// WriteCSV writes <base>_summary.csv and <base>_detail.csv into dir.
func (w *ReportWriter) WriteCSV(dir string, report *domain.CommissionReport) ([]string, error) {
	var paths []string
	for _, t := range csvTables(filepath.Join(dir, BaseName(report)), report) {
		if err := writeCSVFile(t.path, t.rows); err != nil {
			return nil, err
		}
		paths = append(paths, t.path)
	}
	return paths, nil
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "gateway: create %s", path)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return eris.Wrapf(err, "gateway: write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "gateway: close %s", path)
	}
	return nil
}

// SummaryRows renders the summary table with header and trailing total row.
func SummaryRows(report *domain.CommissionReport) [][]string {
	rows := [][]string{SummaryHeader}
	for _, s := range append(append([]domain.AgentSummary{}, report.Summary...), report.Total) {
		rows = append(rows, []string{
			s.AgentID,
			money(s.ExistingTotal),
			money(s.IncrementalTotal),
			money(s.GrandTotal),
		})
	}
	return rows
}

// DetailRows renders the detail table with header.
func DetailRows(report *domain.CommissionReport) [][]string {
	rows := make([][]string, 0, len(report.Detail)+1)
	rows = append(rows, DetailHeader)
	for _, l := range report.Detail {
		rows = append(rows, []string{
			l.Transaction.AgentID,
			l.Transaction.CustomerID,
			l.Transaction.ProductName,
			l.Rule.Keyword,
			l.Rule.Specification,
			l.Transaction.Quantity.String(),
			string(l.Classification),
			money(l.Amount),
		})
	}
	return rows
}

// WriteXLSX writes a workbook with a Summary sheet and a Detail sheet.
func (w *ReportWriter) WriteXLSX(path string, report *domain.CommissionReport) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(summarySheet)
	if err != nil {
		return eris.Wrap(err, "gateway: add summary sheet")
	}
	addHeader(summary, SummaryHeader)
	for _, s := range append(append([]domain.AgentSummary{}, report.Summary...), report.Total) {
		row := summary.AddRow()
		row.AddCell().SetString(s.AgentID)
		addMoney(row, s.ExistingTotal)
		addMoney(row, s.IncrementalTotal)
		addMoney(row, s.GrandTotal)
	}

	detail, err := f.AddSheet(detailSheet)
	if err != nil {
		return eris.Wrap(err, "gateway: add detail sheet")
	}
	addHeader(detail, DetailHeader)
	for _, l := range report.Detail {
		row := detail.AddRow()
		row.AddCell().SetString(l.Transaction.AgentID)
		row.AddCell().SetString(l.Transaction.CustomerID)
		row.AddCell().SetString(l.Transaction.ProductName)
		row.AddCell().SetString(l.Rule.Keyword)
		row.AddCell().SetString(l.Rule.Specification)
		row.AddCell().SetFloat(l.Transaction.Quantity.InexactFloat64())
		row.AddCell().SetString(string(l.Classification))
		addMoney(row, l.Amount)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "gateway: save workbook %s", path)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, header []string) {
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
}

func addMoney(row *xlsx.Row, d decimal.Decimal) {
	row.AddCell().SetFloatWithFormat(d.Round(2).InexactFloat64(), moneyFormat)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
