package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	validateTransactions string
	validateRules        string
	validateRateUnit     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the inputs without computing commissions",
	Long: `Loads both inputs, checks the required columns, counts malformed rows and
verifies the rulebook has at most one fallback rule per keyword.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("rate-unit") {
			cfg.Rules.RateUnit = validateRateUnit
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		uc, err := newUseCase(cfg)
		if err != nil {
			return err
		}

		opts, err := cfg.RuleOptions()
		if err != nil {
			return err
		}
		check, err := uc.Check(cmd.Context(), validateTransactions, validateRules, opts)
		if err != nil {
			return err
		}

		output, err := json.MarshalIndent(check, "", "  ")
		if err != nil {
			return eris.Wrap(err, "validate: encode result")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateTransactions, "transactions", "", "path to the transactions file (required)")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "path to the rulebook (required)")
	validateCmd.Flags().StringVar(&validateRateUnit, "rate-unit", "", "unit of plain numeric rates: fraction or percent")
	_ = validateCmd.MarkFlagRequired("transactions")
	_ = validateCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(validateCmd)
}
