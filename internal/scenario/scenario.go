// Package scenario evaluates named what-if multipliers against the base
// savings levers.
package scenario

import (
	"math"
	"sort"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
)

// Row is one evaluated scenario.
type Row struct {
	Name                   string
	PriceStandardization   float64
	PerformanceImprovement float64
	Consolidation          float64
	TotalSavings           float64
	SavingsPctOfSpend      float64
}

// Run evaluates each configured scenario against the base levers and returns
// the rows sorted by total savings, smallest first. Lever amounts round to
// two decimals and the spend percentage to four.
func Run(base insights.SavingsInsight, scenarios []config.ScenarioConfig) []Row {
	rows := make([]Row, 0, len(scenarios))
	for _, s := range scenarios {
		price := mathutil.Round(base.PriceStandardizationSavings * s.PriceStandardization)
		performance := mathutil.Round(base.PerformanceImprovementSavings * s.PerformanceImprovement)
		consolidation := mathutil.Round(base.ConsolidationSavings * s.Consolidation)
		total := mathutil.Round(price + performance + consolidation)

		pct := 0.0
		if base.TotalSpend > 0 {
			pct = roundPct(total / base.TotalSpend * constants.PercentageMultiplier)
		}

		rows = append(rows, Row{
			Name:                   s.Name,
			PriceStandardization:   price,
			PerformanceImprovement: performance,
			Consolidation:          consolidation,
			TotalSavings:           total,
			SavingsPctOfSpend:      pct,
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].TotalSavings < rows[b].TotalSavings
	})

	return rows
}

// roundPct rounds a percentage to four decimal places.
func roundPct(pct float64) float64 {
	return math.Round(pct*10000) / 10000
}
