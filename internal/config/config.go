// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for procurement-spend-analysis.
type Configuration struct {
	Database     DatabaseConfig
	Optimization OptimizationConfig
	Constraints  ConstraintsConfig
	MonteCarlo   MonteCarloConfig
	Scenarios    []ScenarioConfig
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// DatabaseConfig points at the procurement history database.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format    string `yaml:"format,omitempty"`    // pretty, csv
	Directory string `yaml:"directory,omitempty"` // optional directory for CSV/JSON exports
}

// ScoreWeights weights the four composite score dimensions. The weights are
// applied exactly as configured; they are not renormalized even when they do
// not sum to 1 (see ValidateConfiguration).
type ScoreWeights struct {
	UnitCost float64
	Delivery float64
	Quality  float64
	Risk     float64
}

// OptimizationConfig controls the unconstrained supplier allocator.
type OptimizationConfig struct {
	MaxSuppliersPerCategory int
	MinSupplierShare        float64
	ScoreWeights            ScoreWeights
}

// ConstraintsConfig controls the constraint-enforced supplier allocator.
type ConstraintsConfig struct {
	MaxSingleSupplierShare      float64
	MinDualSourceThreshold      float64
	MinOnTimeDeliveryPct        float64
	MaxQualityIncidentsPerOrder float64
	MaxRiskLevel                string
	MinPricePercentile          float64
}

// UncertaintyConfig holds per-lever standard deviations expressed as a
// fraction of each lever's base value.
type UncertaintyConfig struct {
	PriceStandardizationSigma   float64
	PerformanceImprovementSigma float64
	ConsolidationSigma          float64
	TotalSpendSigma             float64
}

// MonteCarloConfig controls the savings uncertainty simulation.
type MonteCarloConfig struct {
	NumSimulations int
	RandomSeed     int64
	Uncertainty    UncertaintyConfig
}

// ScenarioConfig applies named multipliers to the savings levers.
type ScenarioConfig struct {
	Name                   string
	PriceStandardization   float64
	PerformanceImprovement float64
	Consolidation          float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()

	return &configuration, nil
}

// ApplyDefaults fills unset fields with the standard analysis assumptions.
func (c *Configuration) ApplyDefaults() {
	if c.Optimization.MaxSuppliersPerCategory == 0 {
		c.Optimization.MaxSuppliersPerCategory = constants.DefaultMaxSuppliersPerCategory
	}
	if c.Optimization.MinSupplierShare == 0 {
		c.Optimization.MinSupplierShare = constants.DefaultMinSupplierShare
	}
	if c.Optimization.ScoreWeights == (ScoreWeights{}) {
		c.Optimization.ScoreWeights = ScoreWeights{
			UnitCost: 0.45,
			Delivery: 0.30,
			Quality:  0.15,
			Risk:     0.10,
		}
	}

	if c.Constraints.MaxSingleSupplierShare == 0 {
		c.Constraints.MaxSingleSupplierShare = 0.8
	}
	if c.Constraints.MinDualSourceThreshold == 0 {
		c.Constraints.MinDualSourceThreshold = 0.5e11
	}
	if c.Constraints.MaxQualityIncidentsPerOrder == 0 {
		c.Constraints.MaxQualityIncidentsPerOrder = 5
	}
	if c.Constraints.MaxRiskLevel == "" {
		c.Constraints.MaxRiskLevel = "High"
	}

	if c.MonteCarlo.NumSimulations == 0 {
		c.MonteCarlo.NumSimulations = constants.DefaultNumSimulations
	}
	if c.MonteCarlo.RandomSeed == 0 {
		c.MonteCarlo.RandomSeed = constants.DefaultRandomSeed
	}
	if c.MonteCarlo.Uncertainty == (UncertaintyConfig{}) {
		c.MonteCarlo.Uncertainty = UncertaintyConfig{
			PriceStandardizationSigma:   0.15,
			PerformanceImprovementSigma: 0.20,
			ConsolidationSigma:          0.25,
			TotalSpendSigma:             0.05,
		}
	}

	if len(c.Scenarios) == 0 {
		c.Scenarios = []ScenarioConfig{
			{Name: "conservative", PriceStandardization: 0.5, PerformanceImprovement: 0.5, Consolidation: 0.5},
			{Name: "base", PriceStandardization: 1.0, PerformanceImprovement: 1.0, Consolidation: 1.0},
			{Name: "aggressive", PriceStandardization: 1.3, PerformanceImprovement: 1.2, Consolidation: 1.25},
		}
	}
}
