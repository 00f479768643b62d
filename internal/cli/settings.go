package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"

	"ordernorm/internal/flow/flows"
	flowservice "ordernorm/internal/flow/service"
	"ordernorm/internal/server"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/normalize"
)

const configDirName = ".ordernorm"

const (
	keyDateInputFormats = "date_input_formats"
	keyDateOutputFormat = "date_output_format"
	keyCurrencySymbols  = "currency_symbols"
	keyRulesFile        = "rules_file"
	keyConcurrency      = "concurrency"
	keyLogLevel         = "log_level"
)

// Settings is the CLI configuration file. Environment variables override
// it key by key, e.g. ORDERNORM_RULES_FILE.
type Settings struct {
	DateInputFormats []string `yaml:"date_input_formats"`
	DateOutputFormat string   `yaml:"date_output_format"`
	CurrencySymbols  []string `yaml:"currency_symbols"`
	RulesFile        string   `yaml:"rules_file"`
	Concurrency      int      `yaml:"concurrency"`
	LogLevel         string   `yaml:"log_level"`
}

func DefaultSettings() Settings {
	opts := normalize.DefaultOptions()
	return Settings{
		DateInputFormats: opts.DateInputFormats,
		DateOutputFormat: opts.DateOutputFormat,
		CurrencySymbols:  opts.CurrencySymbols,
		Concurrency:      runtime.NumCPU(),
		LogLevel:         logger.WARN,
	}
}

// loadSettings layers viper's view (file, then env) over the defaults.
func loadSettings() Settings {
	s := DefaultSettings()
	if viper.IsSet(keyDateInputFormats) {
		s.DateInputFormats = viper.GetStringSlice(keyDateInputFormats)
	}
	if viper.IsSet(keyDateOutputFormat) {
		s.DateOutputFormat = viper.GetString(keyDateOutputFormat)
	}
	if viper.IsSet(keyCurrencySymbols) {
		s.CurrencySymbols = viper.GetStringSlice(keyCurrencySymbols)
	}
	if viper.IsSet(keyRulesFile) {
		s.RulesFile = viper.GetString(keyRulesFile)
	}
	if n := viper.GetInt(keyConcurrency); n > 0 {
		s.Concurrency = n
	}
	if viper.IsSet(keyLogLevel) {
		s.LogLevel = viper.GetString(keyLogLevel)
	}
	if viper.GetBool("verbose") {
		s.LogLevel = logger.DEBUG
	}
	return s
}

func (s Settings) NormalizeOptions(log *logger.Logger) normalize.Options {
	return normalize.Options{
		DateInputFormats: s.DateInputFormats,
		DateOutputFormat: s.DateOutputFormat,
		CurrencySymbols:  s.CurrencySymbols,
		Log:              log,
	}
}

// Logs go to stderr so stdout carries only documents.
func (s Settings) Logger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  s.LogLevel,
		Format: logger.TEXT,
		Output: os.Stderr,
	})
}

// FlowService builds the flows without billing, tables or audit storage.
func (s Settings) FlowService(log *logger.Logger) (*flowservice.FlowService, error) {
	deps := flows.Deps{
		Pipeline: normalize.New(s.NormalizeOptions(log)),
		Mapper:   mapping.NewMapper(log),
		Registry: mapping.DefaultRegistry,
		Merge:    mapping.DefaultMergeSpec,
	}
	if s.RulesFile != "" {
		rules, err := mapping.LoadRulesFile(s.RulesFile, deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("load default rules: %w", err)
		}
		deps.DefaultRules = rules
	}
	return server.NewFlowService(deps, nil, nil, log), nil
}
