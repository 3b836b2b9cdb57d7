package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }},
		{"local without dir", func(c *Config) { c.Storage.Dir = "" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = "s3"; c.Storage.Bucket = "" }},
		{"short >= long", func(c *Config) { c.Simulate.ShortSMA = 10 }},
		{"losscut rate out of range", func(c *Config) { c.Simulate.LosscutRate = 1.5 }},
		{"take profit rate out of range", func(c *Config) { c.Simulate.TakeProfitRate = 0 }},
		{"unknown variant", func(c *Config) { c.Forward.Variant = "fancy" }},
		{"negative initial asset", func(c *Config) { c.Portfolio.InitialAsset = -1 }},
		{"available rate above one", func(c *Config) { c.Portfolio.AvailableRate = 1.5 }},
		{"zero top k", func(c *Config) { c.Portfolio.TopK = 0 }},
		{"bad start date", func(c *Config) { c.Portfolio.StartDate = "01/02/2018" }},
		{"inverted window", func(c *Config) { c.Portfolio.StartDate = "2020-01-01" }},
		{"csv journal without files", func(c *Config) { c.Journal.ActionsFile = "" }},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	body := `
storage:
  backend: s3
  bucket: trendsim
portfolio:
  initial_asset: 500000
  start_date: "2017-01-01"
  end_date: "2018-01-01"
forward:
  variant: plain
`
	cfg := loadConfig(t, "config.yaml", body)

	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "trendsim", cfg.Storage.Bucket)
	assert.Equal(t, 500000.0, cfg.Portfolio.InitialAsset)
	assert.Equal(t, "plain", cfg.Forward.Variant)
	// Unspecified values stay at the defaults.
	assert.Equal(t, 0.98, cfg.Simulate.LosscutRate)
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestLoadFromFileJSONFallback(t *testing.T) {
	t.Parallel()

	body := `{"portfolio": {"initial_asset": 750000, "start_date": "2017-01-01", "end_date": "2018-01-01"}}`
	cfg := loadConfig(t, "config.json", body)
	assert.Equal(t, 750000.0, cfg.Portfolio.InitialAsset)
}

func TestLoadFromFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("forward:\n  variant: fancy\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	t.Parallel()

	cfg := Default()
	start, end := cfg.Window()
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func loadConfig(t *testing.T, name, body string) *Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}
