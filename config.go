package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultBudget is the resource budget used when none is configured.
const DefaultBudget = 30

// EnvPrefix prefixes every environment override, e.g. COCKTAILS_BUDGET.
const EnvPrefix = "COCKTAILS"

// Input formats.
const (
	InputAuto = "auto"
	InputCSV  = "csv"
	InputJSON = "json"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the run parameters.
type Config struct {
	// Budget is the maximum number of distinct resources a selection may use.
	Budget int
	// Backend picks the resource set implementation: auto, dense or roaring.
	Backend string
	// Workers is the number of search goroutines; 1 is sequential, 0 is GOMAXPROCS.
	Workers int
	// Timeout bounds the search; the best selection so far is reported when it expires. 0 disables it.
	Timeout time.Duration
	// Strict turns malformed input records into errors instead of skipping them.
	Strict bool
	// InputFormat is auto, csv or json.
	InputFormat string
	// Format is the report format: text, json or yaml.
	Format string
	// Verbose enables debug logging, including every improvement.
	Verbose bool
	// Metrics dumps the Prometheus registry to stderr after the run.
	Metrics bool
}

// DefaultConfig returns the default run parameters.
func DefaultConfig() Config {
	return Config{
		Budget:      DefaultBudget,
		Backend:     string(BackendAuto),
		Workers:     1,
		InputFormat: InputAuto,
		Format:      FormatText,
	}
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if c.Budget < 0 {
		return fmt.Errorf("budget must be >= 0, got %d", c.Budget)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if _, err := ParseBackend(c.Backend); err != nil {
		return err
	}
	switch c.InputFormat {
	case InputAuto, InputCSV, InputJSON:
	default:
		return fmt.Errorf("input-format must be auto, csv or json, got %q", c.InputFormat)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format must be text, json or yaml, got %q", c.Format)
	}
	return nil
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.IntP("budget", "b", d.Budget, "Maximum number of distinct resources in the selection")
	fs.String("backend", d.Backend, "Resource set backend: auto, dense or roaring")
	fs.IntP("workers", "w", d.Workers, "Search workers (1 = sequential, 0 = one per CPU)")
	fs.Duration("timeout", d.Timeout, "Stop searching after this long and report the best so far (0 = no limit)")
	fs.Bool("strict", d.Strict, "Fail on malformed input records instead of skipping them")
	fs.String("input-format", d.InputFormat, "Input format: auto, csv or json")
	fs.StringP("format", "o", d.Format, "Report format: text, json or yaml")
	fs.BoolP("verbose", "v", d.Verbose, "Log search progress")
	fs.Bool("metrics", d.Metrics, "Print search metrics to stderr after the run")
	fs.StringP("config", "c", "", "Optional YAML config file")
}

// NewViper layers defaults, an optional config file, COCKTAILS_* environment
// variables and the flags of fs, in increasing precedence.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("budget", d.Budget)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("input-format", d.InputFormat)
	v.SetDefault("format", d.Format)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("metrics", d.Metrics)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// LoadConfig reads and validates a Config from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	c := Config{
		Budget:      v.GetInt("budget"),
		Backend:     v.GetString("backend"),
		Workers:     v.GetInt("workers"),
		Timeout:     v.GetDuration("timeout"),
		Strict:      v.GetBool("strict"),
		InputFormat: v.GetString("input-format"),
		Format:      v.GetString("format"),
		Verbose:     v.GetBool("verbose"),
		Metrics:     v.GetBool("metrics"),
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// budgetExplicit reports whether the budget came from a flag, the config
// file or the environment rather than the default.
func budgetExplicit(v *viper.Viper, fs *pflag.FlagSet) bool {
	if fs != nil && fs.Changed("budget") {
		return true
	}
	if v.InConfig("budget") {
		return true
	}
	_, ok := os.LookupEnv(EnvPrefix + "_BUDGET")
	return ok
}
