// Package montecarlo quantifies the uncertainty around the savings estimate
// by sampling each savings lever from a normal distribution centered on its
// base value.
package montecarlo

import (
	"math/rand/v2"
	"sort"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionSummary describes one simulated output distribution.
type DistributionSummary struct {
	Mean   float64
	Median float64
	StdDev float64
	P05    float64
	P25    float64
	P75    float64
	P95    float64
}

// Result holds the simulated distributions for total savings and for savings
// as a percentage of total spend.
type Result struct {
	TotalSavings   DistributionSummary
	SavingsPct     DistributionSummary
	NumSimulations int
}

// Run simulates the savings estimate cfg.NumSimulations times. Each draw
// samples the three savings levers and total spend independently, clips
// savings at zero and spend at half the base estimate, and records the total
// and its percentage of spend. The seed fixes the draw sequence, so equal
// inputs produce equal results.
func Run(logger *zap.Logger, base insights.SavingsInsight, cfg config.MonteCarloConfig) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	src := rand.NewPCG(uint64(cfg.RandomSeed), uint64(cfg.RandomSeed))

	priceDist := normalDist(base.PriceStandardizationSavings, cfg.Uncertainty.PriceStandardizationSigma, src)
	performanceDist := normalDist(base.PerformanceImprovementSavings, cfg.Uncertainty.PerformanceImprovementSigma, src)
	consolidationDist := normalDist(base.ConsolidationSavings, cfg.Uncertainty.ConsolidationSigma, src)
	spendDist := normalDist(base.TotalSpend, cfg.Uncertainty.TotalSpendSigma, src)

	spendFloor := base.TotalSpend * constants.SpendFloorFraction

	totals := make([]float64, cfg.NumSimulations)
	percentages := make([]float64, cfg.NumSimulations)

	for i := 0; i < cfg.NumSimulations; i++ {
		price := mathutil.Max(0, priceDist.Rand())
		performance := mathutil.Max(0, performanceDist.Rand())
		consolidation := mathutil.Max(0, consolidationDist.Rand())
		spend := mathutil.Max(spendFloor, spendDist.Rand())

		total := price + performance + consolidation
		totals[i] = total
		if spend > 0 {
			percentages[i] = total / spend * constants.PercentageMultiplier
		}
	}

	result := Result{
		TotalSavings:   summarize(totals),
		SavingsPct:     summarize(percentages),
		NumSimulations: cfg.NumSimulations,
	}

	logger.Debug("monte carlo simulation complete",
		zap.String("op", "montecarlo.Run"),
		zap.Int("numSimulations", cfg.NumSimulations),
		zap.Int64("seed", cfg.RandomSeed),
		zap.Float64("meanTotalSavings", result.TotalSavings.Mean),
	)

	return result
}

// normalDist builds a lever's sampling distribution. The sigma config value
// is a fraction of the base, so a zero base degenerates to a point mass at
// zero which Rand handles by always returning the mean.
func normalDist(base, sigmaFraction float64, src rand.Source) distuv.Normal {
	return distuv.Normal{
		Mu:    base,
		Sigma: base * sigmaFraction,
		Src:   src,
	}
}

// summarize computes the distribution summary over a sample. The sample is
// sorted in place into a copy; quantiles use the empirical estimator.
func summarize(sample []float64) DistributionSummary {
	if len(sample) == 0 {
		return DistributionSummary{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return DistributionSummary{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		StdDev: stat.PopStdDev(sorted, nil),
		P05:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}
