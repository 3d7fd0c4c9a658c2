package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/allocator/optimizer"
	"github.com/rustyeddy/allocator/risk"
)

// Config is the complete allocator configuration.
type Config struct {
	Bundle    BundleConfig     `json:"bundle" yaml:"bundle"`
	Risk      RiskConfig       `json:"risk" yaml:"risk"`
	Optimizer optimizer.Config `json:"optimizer" yaml:"optimizer"`
	Journal   JournalConfig    `json:"journal" yaml:"journal"`
	Log       LogConfig        `json:"log" yaml:"log"`
}

// BundleConfig contains the bundle's pacing parameters.
type BundleConfig struct {
	OptimizationInterval string `json:"optimization_interval" yaml:"optimization_interval"` // e.g. "1h"
	RebalanceInterval    string `json:"rebalance_interval" yaml:"rebalance_interval"`       // e.g. "15m"
}

// ParseOptimizationInterval converts the interval string to a duration.
func (b BundleConfig) ParseOptimizationInterval() (time.Duration, error) {
	if b.OptimizationInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(b.OptimizationInterval)
}

// ParseRebalanceInterval converts the interval string to a duration.
func (b BundleConfig) ParseRebalanceInterval() (time.Duration, error) {
	if b.RebalanceInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(b.RebalanceInterval)
}

// RiskConfig mirrors risk.Parameters with config tags.
type RiskConfig struct {
	MaxTotalLeverage      int `json:"max_total_leverage" yaml:"max_total_leverage"`
	MaxStrategyCount      int `json:"max_strategy_count" yaml:"max_strategy_count"`
	RebalanceThresholdBps int `json:"rebalance_threshold_bps" yaml:"rebalance_threshold_bps"`
	EmergencyThresholdBps int `json:"emergency_threshold_bps" yaml:"emergency_threshold_bps"`
	MaxSlippageBps        int `json:"max_slippage_bps" yaml:"max_slippage_bps"`
	MinEfficiencyBps      int `json:"min_efficiency_bps" yaml:"min_efficiency_bps"`
}

// Parameters converts the config section into risk.Parameters.
func (r RiskConfig) Parameters() risk.Parameters {
	return risk.Parameters{
		MaxTotalLeverage:      r.MaxTotalLeverage,
		MaxStrategyCount:      r.MaxStrategyCount,
		RebalanceThresholdBps: r.RebalanceThresholdBps,
		EmergencyThresholdBps: r.EmergencyThresholdBps,
		MaxSlippageBps:        r.MaxSlippageBps,
		MinEfficiencyBps:      r.MinEfficiencyBps,
	}
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv", or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FlowsFile  string `json:"flows_file,omitempty" yaml:"flows_file,omitempty"`
	EventsFile string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Bundle.ParseOptimizationInterval(); err != nil {
		return fmt.Errorf("bundle.optimization_interval: %w", err)
	}
	if _, err := c.Bundle.ParseRebalanceInterval(); err != nil {
		return fmt.Errorf("bundle.rebalance_interval: %w", err)
	}
	if err := c.Risk.Parameters().Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.FlowsFile == "" || c.Journal.EventsFile == "" {
			return fmt.Errorf("journal flows_file and events_file required for csv type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv', or 'none'")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Bundle: BundleConfig{
			OptimizationInterval: "1h",
			RebalanceInterval:    "15m",
		},
		Risk: RiskConfig{
			MaxTotalLeverage:      300,
			MaxStrategyCount:      10,
			RebalanceThresholdBps: 500,
			EmergencyThresholdBps: 2000,
			MaxSlippageBps:        100,
			MinEfficiencyBps:      9000,
		},
		Optimizer: optimizer.DefaultConfig(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./allocator.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
