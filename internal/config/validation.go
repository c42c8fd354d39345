package config

import (
	"fmt"
	"math"

	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
)

var validRiskLevels = map[string]bool{
	"Low":    true,
	"Medium": true,
	"High":   true,
}

// Validate checks the hard configuration ranges. The analysis core assumes a
// validated configuration, so out-of-range values are rejected here before
// any algorithm runs.
func (c *Configuration) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}

	if c.Optimization.MaxSuppliersPerCategory < 1 {
		return fmt.Errorf("optimization.maxSuppliersPerCategory must be >= 1, got %d",
			c.Optimization.MaxSuppliersPerCategory)
	}
	if c.Optimization.MinSupplierShare < 0 || c.Optimization.MinSupplierShare >= 1 {
		return fmt.Errorf("optimization.minSupplierShare must be in [0, 1), got %g",
			c.Optimization.MinSupplierShare)
	}
	weights := c.Optimization.ScoreWeights
	for name, w := range map[string]float64{
		"unitCost": weights.UnitCost,
		"delivery": weights.Delivery,
		"quality":  weights.Quality,
		"risk":     weights.Risk,
	} {
		if w < 0 {
			return fmt.Errorf("optimization.scoreWeights.%s must be non-negative, got %g", name, w)
		}
	}

	if c.Constraints.MaxSingleSupplierShare <= 0 || c.Constraints.MaxSingleSupplierShare > 1 {
		return fmt.Errorf("constraints.maxSingleSupplierShare must be in (0, 1], got %g",
			c.Constraints.MaxSingleSupplierShare)
	}
	if c.Constraints.MinDualSourceThreshold < 0 {
		return fmt.Errorf("constraints.minDualSourceThreshold must be non-negative, got %g",
			c.Constraints.MinDualSourceThreshold)
	}
	if c.Constraints.MinOnTimeDeliveryPct < 0 || c.Constraints.MinOnTimeDeliveryPct > 100 {
		return fmt.Errorf("constraints.minOnTimeDeliveryPct must be in [0, 100], got %g",
			c.Constraints.MinOnTimeDeliveryPct)
	}
	if c.Constraints.MaxQualityIncidentsPerOrder < 0 {
		return fmt.Errorf("constraints.maxQualityIncidentsPerOrder must be non-negative, got %g",
			c.Constraints.MaxQualityIncidentsPerOrder)
	}
	if !validRiskLevels[c.Constraints.MaxRiskLevel] {
		return fmt.Errorf("constraints.maxRiskLevel must be one of Low, Medium, High, got %q",
			c.Constraints.MaxRiskLevel)
	}
	if c.Constraints.MinPricePercentile < 0 || c.Constraints.MinPricePercentile > 1 {
		return fmt.Errorf("constraints.minPricePercentile must be in [0, 1], got %g",
			c.Constraints.MinPricePercentile)
	}

	if c.MonteCarlo.NumSimulations < 1 {
		return fmt.Errorf("monteCarlo.numSimulations must be >= 1, got %d", c.MonteCarlo.NumSimulations)
	}
	sigmas := c.MonteCarlo.Uncertainty
	for name, sigma := range map[string]float64{
		"priceStandardizationSigma":   sigmas.PriceStandardizationSigma,
		"performanceImprovementSigma": sigmas.PerformanceImprovementSigma,
		"consolidationSigma":          sigmas.ConsolidationSigma,
		"totalSpendSigma":             sigmas.TotalSpendSigma,
	} {
		if sigma < 0 {
			return fmt.Errorf("monteCarlo.uncertainty.%s must be non-negative, got %g", name, sigma)
		}
	}

	for _, scenario := range c.Scenarios {
		if scenario.Name == "" {
			return fmt.Errorf("scenarios entries must have a name")
		}
	}

	return nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that are legal but likely unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	weights := c.Optimization.ScoreWeights
	weightSum := weights.UnitCost + weights.Delivery + weights.Quality + weights.Risk
	if math.Abs(weightSum-1.0) > constants.ShareTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"score weights sum to %.4f, not 1.0; weights are applied as configured without renormalization",
			weightSum))
	}

	minTotal := c.Optimization.MinSupplierShare * float64(c.Optimization.MaxSuppliersPerCategory)
	if minTotal > 1.0 {
		warnings = append(warnings, fmt.Sprintf(
			"minSupplierShare %.2f across %d suppliers exceeds a whole share; allocations will converge to an equal split",
			c.Optimization.MinSupplierShare, c.Optimization.MaxSuppliersPerCategory))
	}

	if c.Constraints.MaxSingleSupplierShare < 0.5 {
		warnings = append(warnings, fmt.Sprintf(
			"maxSingleSupplierShare %.2f is below 0.5; dual-sourced secondaries will carry the majority share",
			c.Constraints.MaxSingleSupplierShare))
	}

	for _, scenario := range c.Scenarios {
		if scenario.PriceStandardization < 0 || scenario.PerformanceImprovement < 0 || scenario.Consolidation < 0 {
			warnings = append(warnings, fmt.Sprintf(
				"scenario %q has a negative multiplier; savings levers will be negated", scenario.Name))
		}
	}

	return warnings
}
