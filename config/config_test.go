package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	d, err := cfg.Bundle.ParseOptimizationInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = cfg.Bundle.ParseRebalanceInterval()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad optimization interval", func(c *Config) { c.Bundle.OptimizationInterval = "soon" }},
		{"bad rebalance interval", func(c *Config) { c.Bundle.RebalanceInterval = "later" }},
		{"bad risk limits", func(c *Config) { c.Risk.MaxTotalLeverage = 0 }},
		{"bad optimizer weights", func(c *Config) { c.Optimizer.CostWeight = 99 }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parchment" }},
		{"sqlite without path", func(c *Config) { c.Journal.DBPath = "" }},
		{"csv without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Risk.MaxStrategyCount = 5
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Risk.MaxStrategyCount)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, cfg.Optimizer, loaded.Optimizer)
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Journal.Type = "none"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "none", loaded.Journal.Type)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not config"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: shouty\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
