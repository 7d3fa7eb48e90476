package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"commission-reconciliation/internal/commission"
	"commission-reconciliation/internal/domain"
	"commission-reconciliation/internal/gateway"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Bonus  BonusConfig  `yaml:"bonus" mapstructure:"bonus"`
	Rules  RulesConfig  `yaml:"rules" mapstructure:"rules"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BonusConfig describes the bonus period. Dates are YYYY-MM-DD.
type BonusConfig struct {
	Start          string `yaml:"start" mapstructure:"start"`
	End            string `yaml:"end" mapstructure:"end"`
	LookbackDays   int    `yaml:"lookback_days" mapstructure:"lookback_days"`
	CategoryFilter string `yaml:"category_filter" mapstructure:"category_filter"`
}

// RulesConfig controls how the rulebook is interpreted.
type RulesConfig struct {
	RateUnit       string   `yaml:"rate_unit" mapstructure:"rate_unit"`
	FallbackTokens []string `yaml:"fallback_tokens" mapstructure:"fallback_tokens"`
	SpecMatch      string   `yaml:"spec_match" mapstructure:"spec_match"`
}

// IngestConfig configures the input readers. Column maps add aliases on top
// of the built-in ones.
type IngestConfig struct {
	MaxInvalidRatio    float64             `yaml:"max_invalid_ratio" mapstructure:"max_invalid_ratio"`
	MaxRows            int                 `yaml:"max_rows" mapstructure:"max_rows"`
	SheetName          string              `yaml:"sheet_name" mapstructure:"sheet_name"`
	DateLayouts        []string            `yaml:"date_layouts" mapstructure:"date_layouts"`
	TransactionColumns map[string][]string `yaml:"transaction_columns" mapstructure:"transaction_columns"`
	RuleColumns        map[string][]string `yaml:"rule_columns" mapstructure:"rule_columns"`
}

// ExportConfig configures where and how reports are written.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// Load reads configuration from config.yaml in the working directory and
// COMMISSION_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMMISSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("bonus.start", "")
	v.SetDefault("bonus.end", "")
	v.SetDefault("bonus.lookback_days", commission.DefaultLookbackDays)
	v.SetDefault("bonus.category_filter", "")
	v.SetDefault("rules.rate_unit", string(gateway.RateFraction))
	v.SetDefault("rules.fallback_tokens", commission.DefaultFallbackTokens)
	v.SetDefault("rules.spec_match", string(commission.SpecCollapse))
	v.SetDefault("ingest.max_invalid_ratio", 0.05)
	v.SetDefault("ingest.max_rows", 1000000)
	v.SetDefault("ingest.sheet_name", "")
	v.SetDefault("ingest.date_layouts", gateway.DefaultDateLayouts)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.formats", []string{gateway.FormatCSV, gateway.FormatXLSX})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings that do not depend on the bonus period.
func (c *Config) Validate() error {
	if c.Ingest.MaxInvalidRatio < 0 || c.Ingest.MaxInvalidRatio > 1 {
		return domain.NewConfigError("ingest.max_invalid_ratio must be within [0, 1], got %v", c.Ingest.MaxInvalidRatio)
	}
	if c.Ingest.MaxRows < 0 {
		return domain.NewConfigError("ingest.max_rows must not be negative, got %d", c.Ingest.MaxRows)
	}
	if c.Bonus.LookbackDays < 0 {
		return domain.NewConfigError("bonus.lookback_days must not be negative, got %d", c.Bonus.LookbackDays)
	}
	if _, err := gateway.ParseRateUnit(c.Rules.RateUnit); err != nil {
		return err
	}
	if _, err := commission.ParseSpecMode(c.Rules.SpecMatch); err != nil {
		return err
	}
	for _, f := range c.Export.Formats {
		if f != gateway.FormatCSV && f != gateway.FormatXLSX {
			return domain.NewConfigError("unknown export format %q", f)
		}
	}
	return nil
}

// ReaderOptions builds the gateway reader options.
func (c *Config) ReaderOptions() (gateway.ReaderOptions, error) {
	unit, err := gateway.ParseRateUnit(c.Rules.RateUnit)
	if err != nil {
		return gateway.ReaderOptions{}, err
	}
	return gateway.ReaderOptions{
		TransactionColumns: mergeColumns(gateway.DefaultTransactionColumns(), c.Ingest.TransactionColumns),
		RuleColumns:        mergeColumns(gateway.DefaultRuleColumns(), c.Ingest.RuleColumns),
		DateLayouts:        c.Ingest.DateLayouts,
		RateUnit:           unit,
		MaxRows:            c.Ingest.MaxRows,
		SheetName:          c.Ingest.SheetName,
	}, nil
}

// Params builds the engine parameters from the bonus section.
func (c *Config) Params() (commission.Params, error) {
	start, err := parseDay("bonus.start", c.Bonus.Start)
	if err != nil {
		return commission.Params{}, err
	}
	end, err := parseDay("bonus.end", c.Bonus.End)
	if err != nil {
		return commission.Params{}, err
	}
	opts, err := c.RuleOptions()
	if err != nil {
		return commission.Params{}, err
	}
	p := commission.Params{
		BonusStart:     start,
		BonusEnd:       end,
		LookbackDays:   c.Bonus.LookbackDays,
		CategoryFilter: c.Bonus.CategoryFilter,
		FallbackTokens: opts.FallbackTokens,
		SpecMatch:      opts.SpecMatch,
	}
	if err := p.Validate(); err != nil {
		return commission.Params{}, err
	}
	return p, nil
}

// RuleOptions builds the rule index options from the rules section.
func (c *Config) RuleOptions() (commission.RuleOptions, error) {
	mode, err := commission.ParseSpecMode(c.Rules.SpecMatch)
	if err != nil {
		return commission.RuleOptions{}, err
	}
	return commission.RuleOptions{FallbackTokens: c.Rules.FallbackTokens, SpecMatch: mode}, nil
}

func parseDay(key, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, domain.NewConfigError("%s is required", key)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, domain.NewConfigError("%s %q is not a YYYY-MM-DD date", key, raw)
	}
	return t, nil
}

func mergeColumns(base gateway.ColumnMap, extra map[string][]string) gateway.ColumnMap {
	for name, aliases := range extra {
		key := strings.ToLower(strings.TrimSpace(name))
		base[key] = append(base[key], aliases...)
	}
	return base
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
