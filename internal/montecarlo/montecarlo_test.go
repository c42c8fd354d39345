package montecarlo

import (
	"math"
	"testing"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
	"go.uber.org/zap"
)

func baseInsight() insights.SavingsInsight {
	return insights.SavingsInsight{
		TotalSpend:                    1000000,
		PriceStandardizationSavings:   100000,
		PerformanceImprovementSavings: 150000,
		ConsolidationSavings:          100000,
	}
}

func simulationConfig(seed int64) config.MonteCarloConfig {
	return config.MonteCarloConfig{
		NumSimulations: 2000,
		RandomSeed:     seed,
		Uncertainty: config.UncertaintyConfig{
			PriceStandardizationSigma:   0.15,
			PerformanceImprovementSigma: 0.20,
			ConsolidationSigma:          0.25,
			TotalSpendSigma:             0.05,
		},
	}
}

func TestRunIsDeterministicForEqualSeeds(t *testing.T) {
	first := Run(zap.NewNop(), baseInsight(), simulationConfig(42))
	second := Run(zap.NewNop(), baseInsight(), simulationConfig(42))

	if first != second {
		t.Errorf("equal seeds should produce identical results:\n%+v\n%+v", first, second)
	}
}

func TestRunDiffersForDifferentSeeds(t *testing.T) {
	first := Run(zap.NewNop(), baseInsight(), simulationConfig(42))
	second := Run(zap.NewNop(), baseInsight(), simulationConfig(43))

	if first.TotalSavings.Mean == second.TotalSavings.Mean {
		t.Errorf("different seeds should produce different draws, both means are %v",
			first.TotalSavings.Mean)
	}
}

func TestRunZeroSigmasCollapseToBase(t *testing.T) {
	cfg := simulationConfig(42)
	cfg.Uncertainty = config.UncertaintyConfig{}

	result := Run(zap.NewNop(), baseInsight(), cfg)

	if math.Abs(result.TotalSavings.Mean-350000) > 1e-6 {
		t.Errorf("expected mean total savings 350000, got %v", result.TotalSavings.Mean)
	}
	if result.TotalSavings.StdDev != 0 {
		t.Errorf("expected zero spread, got std dev %v", result.TotalSavings.StdDev)
	}
	if math.Abs(result.SavingsPct.Mean-35.0) > 1e-6 {
		t.Errorf("expected mean savings pct 35.0, got %v", result.SavingsPct.Mean)
	}
	if result.TotalSavings.P05 != result.TotalSavings.P95 {
		t.Errorf("degenerate distribution should have equal percentiles, got p5 %v p95 %v",
			result.TotalSavings.P05, result.TotalSavings.P95)
	}
}

func TestRunPercentilesAreOrdered(t *testing.T) {
	result := Run(zap.NewNop(), baseInsight(), simulationConfig(7))

	for _, summary := range []DistributionSummary{result.TotalSavings, result.SavingsPct} {
		if summary.P05 > summary.P25 || summary.P25 > summary.Median ||
			summary.Median > summary.P75 || summary.P75 > summary.P95 {
			t.Errorf("percentiles out of order: %+v", summary)
		}
	}
}

func TestRunClipsKeepDrawsNonNegative(t *testing.T) {
	// Extreme sigmas would drive raw normal draws deep below zero; the clips
	// keep every lever and the spend draw in range.
	cfg := simulationConfig(42)
	cfg.Uncertainty = config.UncertaintyConfig{
		PriceStandardizationSigma:   5,
		PerformanceImprovementSigma: 5,
		ConsolidationSigma:          5,
		TotalSpendSigma:             5,
	}

	result := Run(zap.NewNop(), baseInsight(), cfg)

	if result.TotalSavings.P05 < 0 {
		t.Errorf("clipped savings should never go negative, got p5 %v", result.TotalSavings.P05)
	}
	if result.SavingsPct.P05 < 0 {
		t.Errorf("savings pct should never go negative, got p5 %v", result.SavingsPct.P05)
	}
}

func TestRunZeroBaseProducesZeroDistribution(t *testing.T) {
	result := Run(zap.NewNop(), insights.SavingsInsight{}, simulationConfig(42))

	if result.TotalSavings.Mean != 0 || result.TotalSavings.StdDev != 0 {
		t.Errorf("zero base levers should simulate to zero, got %+v", result.TotalSavings)
	}
	if result.SavingsPct.Mean != 0 {
		t.Errorf("zero spend should yield zero savings pct, got %v", result.SavingsPct.Mean)
	}
}

func TestSummarizeEmptySample(t *testing.T) {
	if summarize(nil) != (DistributionSummary{}) {
		t.Errorf("empty sample should summarize to zero values")
	}
}
