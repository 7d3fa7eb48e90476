package main

import (
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"commission-reconciliation/internal/config"
	"commission-reconciliation/internal/domain"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "commission",
	Short: "Sales commission reconciliation",
	Long: "Matches sales transactions against a keyword/specification rulebook, labels each bonus-period\n" +
		"sale as existing or incremental business and pays out per agent.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "root: load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "root: init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Exit codes by error class.
const (
	exitFailure    = 1
	exitConfig     = 2
	exitSchema     = 3
	exitValidation = 4
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfig):
		return exitConfig
	case errors.Is(err, domain.ErrSchema):
		return exitSchema
	case errors.Is(err, domain.ErrValidation):
		return exitValidation
	default:
		return exitFailure
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
