// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cloudcost/internal/errors"
	"cloudcost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `yaml:"version"`

	// Project contains cloud project settings
	Project ProjectConfig `yaml:"project"`

	// Analysis contains analysis thresholds
	Analysis AnalysisConfig `yaml:"analysis"`

	// Catalog contains reference data paths
	Catalog CatalogConfig `yaml:"catalog"`

	// Collector contains data source settings
	Collector CollectorConfig `yaml:"collector"`

	// Output contains output configuration
	Output OutputConfig `yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `yaml:"logging"`
}

// ProjectConfig contains cloud project settings
type ProjectConfig struct {
	// ProjectID is the cloud project to analyze
	ProjectID string `yaml:"project_id"`

	// BillingAccountID is the billing account, if known
	BillingAccountID string `yaml:"billing_account_id,omitempty"`

	// ServiceAccountPath points at a service account key file
	ServiceAccountPath string `yaml:"service_account_path,omitempty"`
}

// AnalysisConfig contains analysis thresholds
type AnalysisConfig struct {
	// AnomalyThresholdPct is the deviation percentage that flags a day
	AnomalyThresholdPct float64 `yaml:"anomaly_threshold_pct"`

	// ForecastDays is the budget forecast horizon
	ForecastDays int `yaml:"forecast_days"`

	// MinSavings filters recommendations below this monthly amount
	MinSavings float64 `yaml:"min_savings"`

	// MaxRecommendations truncates the ranked list; 0 means no limit
	MaxRecommendations int `yaml:"max_recommendations"`

	// SimulateMetrics enables synthetic utilization metrics when no
	// telemetry source is configured
	SimulateMetrics bool `yaml:"simulate_metrics"`
}

// CatalogConfig contains reference data paths
type CatalogConfig struct {
	// MachineTypesPath overrides the built-in machine type catalog
	MachineTypesPath string `yaml:"machine_types_path,omitempty"`

	// CostTablePath overrides the built-in monthly cost table
	CostTablePath string `yaml:"cost_table_path,omitempty"`
}

// CollectorConfig contains data source settings
type CollectorConfig struct {
	// Source selects the collector (gcp, file)
	Source string `yaml:"source"`

	// SnapshotPath is the input file for the file collector
	SnapshotPath string `yaml:"snapshot_path,omitempty"`

	// LookbackDays is the billing collection window
	LookbackDays int `yaml:"lookback_days"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `yaml:"default_format"`

	// ShowDetails shows per-recommendation detail
	ShowDetails bool `yaml:"show_details"`

	// NoColor disables terminal colors
	NoColor bool `yaml:"no_color"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			AnomalyThresholdPct: 20.0,
			ForecastDays:        30,
			MinSavings:          0,
			MaxRecommendations:  0,
			SimulateMetrics:     true,
		},
		Collector: CollectorConfig{
			Source:       "file",
			LookbackDays: 30,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowDetails:   true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a YAML file. Values of the form $NAME
// are expanded from the environment; a missing variable leaves the
// literal value in place so the failure surfaces close to its use.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("failed to read config file", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Config("failed to parse config file", err)
	}

	expandEnv(config)
	return config, nil
}

// Save saves configuration to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Config("failed to encode config", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks required fields for the selected collector
func (c *Config) Validate() error {
	switch c.Collector.Source {
	case "gcp":
		if c.Project.ProjectID == "" {
			return errors.New(errors.TypeConfig, "project.project_id is required for the gcp collector")
		}
	case "file":
		if c.Collector.SnapshotPath == "" {
			return errors.New(errors.TypeConfig, "collector.snapshot_path is required for the file collector")
		}
	default:
		return errors.Newf(errors.TypeConfig, "unknown collector source: %s", c.Collector.Source)
	}
	return nil
}

// expandEnv resolves $NAME values against the environment
func expandEnv(c *Config) {
	c.Project.ProjectID = expandValue(c.Project.ProjectID)
	c.Project.BillingAccountID = expandValue(c.Project.BillingAccountID)
	c.Project.ServiceAccountPath = expandValue(c.Project.ServiceAccountPath)
	c.Collector.SnapshotPath = expandValue(c.Collector.SnapshotPath)
}

func expandValue(v string) string {
	if !strings.HasPrefix(v, "$") {
		return v
	}
	name := strings.TrimPrefix(v, "$")
	if env, ok := os.LookupEnv(name); ok {
		return env
	}
	logging.Sugar.Warnf("environment variable %s not set", name)
	return v
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
