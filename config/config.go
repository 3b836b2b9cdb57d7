package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration. Values arrive validated; the
// pipeline consumes them as-is.
type Config struct {
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Simulate  SimulateConfig  `json:"simulate" yaml:"simulate"`
	Forward   ForwardConfig   `json:"forward" yaml:"forward"`
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// StorageConfig selects the artifact store and the run prefixes inside it.
type StorageConfig struct {
	Backend        string `json:"backend" yaml:"backend"` // "local" or "s3"
	Bucket         string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Dir            string `json:"dir,omitempty" yaml:"dir,omitempty"`
	InputPrefix    string `json:"input_prefix" yaml:"input_prefix"`
	SimulatePrefix string `json:"simulate_prefix" yaml:"simulate_prefix"`
	ForwardPrefix  string `json:"forward_prefix" yaml:"forward_prefix"`
	ModelPrefix    string `json:"model_prefix" yaml:"model_prefix"`
}

// SimulateConfig holds the signal and state-machine thresholds.
type SimulateConfig struct {
	ShortSMA          int     `json:"short_sma" yaml:"short_sma"`
	LongSMA           int     `json:"long_sma" yaml:"long_sma"`
	LosscutRate       float64 `json:"losscut_rate" yaml:"losscut_rate"`
	TakeProfitRate    float64 `json:"take_profit_rate" yaml:"take_profit_rate"`
	MinimumProfitRate float64 `json:"minimum_profit_rate" yaml:"minimum_profit_rate"`
}

// ForwardConfig selects the gating variant and feature window.
type ForwardConfig struct {
	Variant       string `json:"variant" yaml:"variant"` // "plain" or "signal"
	FeaturePeriod int    `json:"feature_period" yaml:"feature_period"`
}

// PortfolioConfig holds the day-stepped backtest parameters.
type PortfolioConfig struct {
	InitialAsset      float64 `json:"initial_asset" yaml:"initial_asset"`
	AvailableRate     float64 `json:"available_rate" yaml:"available_rate"`
	FeeRate           float64 `json:"fee_rate" yaml:"fee_rate"`
	TaxRate           float64 `json:"tax_rate" yaml:"tax_rate"`
	TopK              int     `json:"top_k" yaml:"top_k"`
	ProfitFactorFloor float64 `json:"profit_factor_floor" yaml:"profit_factor_floor"`
	StartDate         string  `json:"start_date" yaml:"start_date"`
	EndDate           string  `json:"end_date" yaml:"end_date"`
}

// BatchConfig sizes the per-instrument worker pool.
type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers"` // 0 means NumCPU
}

// JournalConfig selects where the backtest ledger lands.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "csv" or "sqlite"
	ActionsFile string `json:"actions_file,omitempty" yaml:"actions_file,omitempty"`
	ResultsFile string `json:"results_file,omitempty" yaml:"results_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback)
// and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for local backend")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend must be 'local' or 's3'")
	}

	if c.Simulate.ShortSMA <= 0 || c.Simulate.LongSMA <= 0 || c.Simulate.ShortSMA >= c.Simulate.LongSMA {
		return fmt.Errorf("simulate SMA windows must satisfy 0 < short < long")
	}
	if c.Simulate.LosscutRate <= 0 || c.Simulate.LosscutRate >= 1 {
		return fmt.Errorf("simulate.losscut_rate must be in (0, 1)")
	}
	if c.Simulate.TakeProfitRate <= 0 || c.Simulate.TakeProfitRate >= 1 {
		return fmt.Errorf("simulate.take_profit_rate must be in (0, 1)")
	}

	v := strings.ToLower(c.Forward.Variant)
	if v != "plain" && v != "signal" {
		return fmt.Errorf("forward.variant must be 'plain' or 'signal'")
	}

	if c.Portfolio.InitialAsset <= 0 {
		return fmt.Errorf("portfolio.initial_asset must be positive")
	}
	if c.Portfolio.AvailableRate <= 0 || c.Portfolio.AvailableRate > 1 {
		return fmt.Errorf("portfolio.available_rate must be in (0, 1]")
	}
	if c.Portfolio.TopK <= 0 {
		return fmt.Errorf("portfolio.top_k must be positive")
	}
	for _, d := range []string{c.Portfolio.StartDate, c.Portfolio.EndDate} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("portfolio date %q: %w", d, err)
		}
	}
	if c.Portfolio.StartDate >= c.Portfolio.EndDate {
		return fmt.Errorf("portfolio.start_date must precede end_date")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.ActionsFile == "" || c.Journal.ResultsFile == "" {
			return fmt.Errorf("journal actions_file and results_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}

	return nil
}

// Window parses the portfolio test window. Call after Validate.
func (c *Config) Window() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", c.Portfolio.StartDate)
	end, _ = time.Parse("2006-01-02", c.Portfolio.EndDate)
	return start, end
}

// Default returns a configuration with the production parameter set.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:        "local",
			Dir:            "./data",
			InputPrefix:    "preprocess",
			SimulatePrefix: "simulate",
			ForwardPrefix:  "forward_test",
			ModelPrefix:    "predict",
		},
		Simulate: SimulateConfig{
			ShortSMA:          5,
			LongSMA:           10,
			LosscutRate:       0.98,
			TakeProfitRate:    0.95,
			MinimumProfitRate: 0.03,
		},
		Forward: ForwardConfig{
			Variant:       "signal",
			FeaturePeriod: 20,
		},
		Portfolio: PortfolioConfig{
			InitialAsset:      1_000_000,
			AvailableRate:     0.05,
			FeeRate:           0.001,
			TaxRate:           0.21,
			TopK:              100,
			ProfitFactorFloor: 2.0,
			StartDate:         "2018-01-01",
			EndDate:           "2019-01-01",
		},
		Batch: BatchConfig{Workers: 0},
		Journal: JournalConfig{
			Type:        "csv",
			ActionsFile: "./test_all.action.csv",
			ResultsFile: "./test_all.result.csv",
		},
		Log: LogConfig{Level: "info", Pretty: false},
	}
}
