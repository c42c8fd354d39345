package scenario

import (
	"math"
	"testing"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
)

func baseInsight() insights.SavingsInsight {
	return insights.SavingsInsight{
		TotalSpend:                    1000000,
		PriceStandardizationSavings:   100000,
		PerformanceImprovementSavings: 150000,
		ConsolidationSavings:          100000,
	}
}

func TestRunBaseMultipliersReproduceLevers(t *testing.T) {
	rows := Run(baseInsight(), []config.ScenarioConfig{
		{Name: "base", PriceStandardization: 1.0, PerformanceImprovement: 1.0, Consolidation: 1.0},
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.TotalSavings != 350000 {
		t.Errorf("expected total savings 350000, got %v", row.TotalSavings)
	}
	if math.Abs(row.SavingsPctOfSpend-35.0) > 1e-9 {
		t.Errorf("expected 35.0%% of spend, got %v", row.SavingsPctOfSpend)
	}
}

func TestRunScalesEachLeverIndependently(t *testing.T) {
	rows := Run(baseInsight(), []config.ScenarioConfig{
		{Name: "mixed", PriceStandardization: 0.5, PerformanceImprovement: 2.0, Consolidation: 0},
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.PriceStandardization != 50000 {
		t.Errorf("expected price lever 50000, got %v", row.PriceStandardization)
	}
	if row.PerformanceImprovement != 300000 {
		t.Errorf("expected performance lever 300000, got %v", row.PerformanceImprovement)
	}
	if row.Consolidation != 0 {
		t.Errorf("expected consolidation lever 0, got %v", row.Consolidation)
	}
	if row.TotalSavings != 350000 {
		t.Errorf("expected total 350000, got %v", row.TotalSavings)
	}
}

func TestRunSortsByTotalSavingsAscending(t *testing.T) {
	rows := Run(baseInsight(), []config.ScenarioConfig{
		{Name: "aggressive", PriceStandardization: 1.3, PerformanceImprovement: 1.2, Consolidation: 1.25},
		{Name: "conservative", PriceStandardization: 0.5, PerformanceImprovement: 0.5, Consolidation: 0.5},
		{Name: "base", PriceStandardization: 1.0, PerformanceImprovement: 1.0, Consolidation: 1.0},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	expected := []string{"conservative", "base", "aggressive"}
	for i, name := range expected {
		if rows[i].Name != name {
			t.Errorf("expected %s at position %d, got %s", name, i, rows[i].Name)
		}
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].TotalSavings > rows[i].TotalSavings {
			t.Errorf("rows not sorted ascending: %v > %v", rows[i-1].TotalSavings, rows[i].TotalSavings)
		}
	}
}

func TestRunZeroSpendYieldsZeroPct(t *testing.T) {
	base := baseInsight()
	base.TotalSpend = 0

	rows := Run(base, []config.ScenarioConfig{
		{Name: "base", PriceStandardization: 1.0, PerformanceImprovement: 1.0, Consolidation: 1.0},
	})

	if rows[0].SavingsPctOfSpend != 0 {
		t.Errorf("expected zero pct with no spend, got %v", rows[0].SavingsPctOfSpend)
	}
}

func TestRunNoScenarios(t *testing.T) {
	rows := Run(baseInsight(), nil)
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestRunPctRoundsToFourDecimals(t *testing.T) {
	base := insights.SavingsInsight{
		TotalSpend:                  3000000,
		PriceStandardizationSavings: 100000,
	}

	rows := Run(base, []config.ScenarioConfig{
		{Name: "base", PriceStandardization: 1.0},
	})

	// 100000 / 3000000 * 100 = 3.3333...
	if rows[0].SavingsPctOfSpend != 3.3333 {
		t.Errorf("expected 3.3333, got %v", rows[0].SavingsPctOfSpend)
	}
}
