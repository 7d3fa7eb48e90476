package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"commission-reconciliation/internal/commission"
	"commission-reconciliation/internal/config"
	"commission-reconciliation/internal/domain"
	"commission-reconciliation/internal/gateway"
	"commission-reconciliation/internal/usecase"
)

var (
	runTransactions string
	runRules        string
	runStart        string
	runEnd          string
	runLookbackDays int
	runCategory     string
	runOutDir       string
	runFormats      []string
	runRateUnit     string
	runJSON         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute commissions for a bonus period",
	Long: `Reads the transactions and the rulebook, computes per-line commissions and the
per-agent summary, and exports both tables.

Examples:
  commission run --transactions sales.xlsx --rules rules.csv --start 2025-05-01 --end 2025-05-31

  # Fresh fruit only, percent rates, JSON report on stdout
  commission run --transactions sales.csv --rules rules.yaml --start 2025-05-01 --end 2025-05-31 \
    --category 鲜果 --rate-unit percent --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		params, err := cfg.Params()
		if err != nil {
			return err
		}
		uc, err := newUseCase(cfg)
		if err != nil {
			return err
		}

		report, err := uc.Calculate(cmd.Context(), runTransactions, runRules, params)
		if err != nil {
			return err
		}

		paths, err := gateway.NewReportWriter().Write(cfg.Export.Dir, cfg.Export.Formats, report)
		if err != nil {
			return eris.Wrap(err, "run: export report")
		}
		for _, p := range paths {
			zap.L().Info("report written", zap.String("run_id", report.RunID), zap.String("path", p))
		}

		if runJSON {
			return printReportJSON(cmd.OutOrStdout(), report)
		}
		printSummary(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runTransactions, "transactions", "", "path to the transactions file, .csv or .xlsx (required)")
	runCmd.Flags().StringVar(&runRules, "rules", "", "path to the rulebook, .csv, .xlsx or .yaml (required)")
	runCmd.Flags().StringVar(&runStart, "start", "", "first day of the bonus period, YYYY-MM-DD (default: bonus.start)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "last day of the bonus period, YYYY-MM-DD (default: bonus.end)")
	runCmd.Flags().IntVar(&runLookbackDays, "lookback-days", commission.DefaultLookbackDays, "length of the baseline window in days")
	runCmd.Flags().StringVar(&runCategory, "category", "", "only pay transactions in this primary category")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "export directory (default: export.dir)")
	runCmd.Flags().StringSliceVar(&runFormats, "format", nil, "export formats: csv, xlsx (default: export.formats)")
	runCmd.Flags().StringVar(&runRateUnit, "rate-unit", "", "unit of plain numeric rates: fraction or percent (default: rules.rate_unit)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full report as JSON")
	_ = runCmd.MarkFlagRequired("transactions")
	_ = runCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides configuration with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("start") {
		c.Bonus.Start = runStart
	}
	if flags.Changed("end") {
		c.Bonus.End = runEnd
	}
	if flags.Changed("lookback-days") {
		c.Bonus.LookbackDays = runLookbackDays
	}
	if flags.Changed("category") {
		c.Bonus.CategoryFilter = runCategory
	}
	if flags.Changed("out-dir") {
		c.Export.Dir = runOutDir
	}
	if flags.Changed("format") {
		c.Export.Formats = runFormats
	}
	if flags.Changed("rate-unit") {
		c.Rules.RateUnit = runRateUnit
	}
}

func newUseCase(c *config.Config) (*usecase.CommissionUseCase, error) {
	opts, err := c.ReaderOptions()
	if err != nil {
		return nil, err
	}
	repo := gateway.NewTableRepository(opts)
	engine := commission.NewEngine(zap.L())
	return usecase.NewCommissionUseCase(repo, engine, c.Ingest.MaxInvalidRatio), nil
}

func printReportJSON(w io.Writer, report *domain.CommissionReport) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "run: encode report")
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func printSummary(w io.Writer, report *domain.CommissionReport) {
	fmt.Fprintf(w, "bonus period %s, baseline %s\n", report.BonusPeriod, report.BaselinePeriod)
	fmt.Fprintf(w, "agents: %d  lines: %d  total payout: %s\n",
		report.AgentCount(), len(report.Detail), report.Total.GrandTotal.StringFixed(commission.AmountPlaces))
	fmt.Fprintf(w, "unmatched: %d  unresolved: %d  rejected rows: %d\n",
		report.Counters.Unmatched, report.Counters.Unresolved, report.Counters.RejectedRows)
	fmt.Fprintln(w)

	rows := gateway.SummaryRows(report)
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s %16s %18s %14s\n", r[0], r[1], r[2], r[3])
	}
}
