// Package output provides utilities for formatting and exporting analysis
// reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DavidMaco/procurement-spend-analysis/internal/analysis"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
	"github.com/DavidMaco/procurement-spend-analysis/internal/montecarlo"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(report *analysis.Report) {
	p := message.NewPrinter(language.English)
	in := report.Insights

	fmt.Printf("--- Procurement Spend Analysis (run %s) ---\n\n", report.RunID)

	fmt.Printf("Executive summary\n")
	_, _ = p.Printf("  Total orders:        %d\n", in.TotalOrders)
	_, _ = p.Printf("  Total suppliers:     %d\n", in.TotalSuppliers)
	fmt.Printf("  Total spend:         %s\n", format.Currency(in.TotalSpend))
	fmt.Printf("  Avg order value:     %s\n", format.Currency(in.AvgOrderValue))

	if len(report.Categories) > 0 {
		fmt.Printf("\nSpend by category\n")
		fmt.Printf("  Category             | Spend              | %% of spend | Cumulative\n")
		fmt.Printf("  ________             | _____              | __________ | __________\n")
		for _, c := range report.Categories {
			fmt.Printf("  %-20s | %-18s | %9s%% | %9s%%\n",
				c.Category, format.Currency(c.TotalSpend),
				fmt.Sprintf("%.1f", c.SpendPct), fmt.Sprintf("%.1f", c.CumulativePct))
		}
	}

	fmt.Printf("\nSavings opportunities\n")
	fmt.Printf("  Price standardization:    %s\n", format.Currency(in.PriceStandardizationSavings))
	fmt.Printf("  Performance improvement:  %s\n", format.Currency(in.PerformanceImprovementSavings))
	fmt.Printf("  Consolidation:            %s\n", format.Currency(in.ConsolidationSavings))
	fmt.Printf("  Total identified:         %s (%s of spend)\n",
		format.Currency(in.TotalSavings), format.Percentage(in.SavingsPct))

	fmt.Printf("\nRisk exposure\n")
	fmt.Printf("  Maverick spend:      %s\n", format.Currency(in.MaverickSpend))
	if in.USDSpend > 0 {
		_, _ = p.Printf("  USD spend:           $%.2f (FX volatility %s)\n", in.USDSpend, format.Percentage(in.FXVolatilityPct))
	}

	fmt.Printf("\nSupplier optimization (unconstrained)\n")
	fmt.Printf("  Category             | Supplier                  | Score | Share  | Projected spend\n")
	fmt.Printf("  ________             | ________                  | _____ | _____  | _______________\n")
	for _, rec := range report.OptimizerRecommendations {
		fmt.Printf("  %-20s | %-25s | %.3f | %5.1f%% | %s\n",
			rec.Category, rec.SupplierName, rec.CompositeScore,
			rec.RecommendedShare*100, format.Currency(rec.ProjectedSpend))
	}
	fmt.Printf("  Savings: %s (%s)\n",
		format.Currency(report.OptimizerSummary.Savings),
		format.Percentage(report.OptimizerSummary.SavingsPct))

	fmt.Printf("\nConstrained optimization\n")
	fmt.Printf("  Category             | Supplier                  | Share  | Dual | Projected spend\n")
	fmt.Printf("  ________             | ________                  | _____  | ____ | _______________\n")
	for _, rec := range report.ConstrainedRecommendations {
		dual := ""
		if rec.DualSourced {
			dual = "yes"
		}
		fmt.Printf("  %-20s | %-25s | %5.1f%% | %-4s | %s\n",
			rec.Category, rec.SupplierName,
			rec.ConstrainedShare*100, dual, format.Currency(rec.ProjectedSpend))
	}
	fmt.Printf("  Savings: %s (%s), dual-sourced categories: %d\n",
		format.Currency(report.ConstrainedSummary.Savings),
		format.Percentage(report.ConstrainedSummary.SavingsPct),
		report.ConstrainedSummary.DualSourcedCategories)

	fmt.Printf("\nScenario analysis\n")
	fmt.Printf("  Scenario       | Total savings      | %% of spend\n")
	fmt.Printf("  ________       | _____________      | __________\n")
	for _, row := range report.Scenarios {
		fmt.Printf("  %-14s | %-18s | %s\n",
			row.Name, format.Currency(row.TotalSavings), format.Percentage(row.SavingsPctOfSpend))
	}

	mc := report.MonteCarlo
	fmt.Printf("\nSavings uncertainty (%d simulations)\n", mc.NumSimulations)
	fmt.Printf("  Total savings:  mean %s, median %s, p5 %s, p95 %s\n",
		format.Currency(mc.TotalSavings.Mean), format.Currency(mc.TotalSavings.Median),
		format.Currency(mc.TotalSavings.P05), format.Currency(mc.TotalSavings.P95))
	fmt.Printf("  %% of spend:     mean %s, median %s, p5 %s, p95 %s\n",
		format.Percentage(mc.SavingsPct.Mean), format.Percentage(mc.SavingsPct.Median),
		format.Percentage(mc.SavingsPct.P05), format.Percentage(mc.SavingsPct.P95))
}

// CsvFormat outputs the recommendation tables in comma-separated value format.
func CsvFormat(report *analysis.Report) {
	fmt.Printf(`"table","category","supplier_id","supplier_name","share","projected_quantity","projected_spend_ngn","avg_unit_cost_ngn","dual_sourced"`)
	fmt.Printf("\n")
	for _, rec := range report.OptimizerRecommendations {
		fmt.Printf(`"optimizer","%s","%s","%s","%.6f","%.2f","%.2f","%.4f",""`,
			rec.Category, rec.SupplierID, rec.SupplierName,
			rec.RecommendedShare, rec.ProjectedQuantity, rec.ProjectedSpend, rec.AvgUnitCost)
		fmt.Printf("\n")
	}
	for _, rec := range report.ConstrainedRecommendations {
		fmt.Printf(`"constrained","%s","%s","%s","%.6f","%.2f","%.2f","%.4f","%t"`,
			rec.Category, rec.SupplierID, rec.SupplierName,
			rec.ConstrainedShare, rec.ProjectedQuantity, rec.ProjectedSpend, rec.AvgUnitCost, rec.DualSourced)
		fmt.Printf("\n")
	}
}

// ExportFiles writes the report tables to the given directory: one CSV per
// recommendation table, a scenario CSV, a Monte Carlo CSV, and the insight
// record as JSON.
func ExportFiles(report *analysis.Report, directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeOptimizerCSV(report, filepath.Join(directory, "optimizer_recommendations.csv")); err != nil {
		return err
	}
	if err := writeConstrainedCSV(report, filepath.Join(directory, "constrained_recommendations.csv")); err != nil {
		return err
	}
	if err := writeCategoryCSV(report, filepath.Join(directory, "category_spend.csv")); err != nil {
		return err
	}
	if err := writeScenarioCSV(report, filepath.Join(directory, "scenario_analysis.csv")); err != nil {
		return err
	}
	if err := writeMonteCarloCSV(report, filepath.Join(directory, "monte_carlo_summary.csv")); err != nil {
		return err
	}
	return writeInsightsJSON(report, filepath.Join(directory, "savings_insights.json"))
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func writeOptimizerCSV(report *analysis.Report, path string) error {
	header := []string{"category", "supplier_id", "supplier_name", "composite_score",
		"recommended_share", "projected_quantity", "projected_spend_ngn", "avg_unit_cost_ngn"}
	rows := make([][]string, 0, len(report.OptimizerRecommendations))
	for _, rec := range report.OptimizerRecommendations {
		rows = append(rows, []string{
			rec.Category, rec.SupplierID, rec.SupplierName,
			strconv.FormatFloat(rec.CompositeScore, 'f', 4, 64),
			strconv.FormatFloat(rec.RecommendedShare, 'f', 6, 64),
			strconv.FormatFloat(rec.ProjectedQuantity, 'f', 2, 64),
			strconv.FormatFloat(rec.ProjectedSpend, 'f', 2, 64),
			strconv.FormatFloat(rec.AvgUnitCost, 'f', 4, 64),
		})
	}
	return writeCSV(path, header, rows)
}

func writeConstrainedCSV(report *analysis.Report, path string) error {
	header := []string{"category", "supplier_id", "supplier_name",
		"constrained_share", "projected_quantity", "projected_spend_ngn", "avg_unit_cost_ngn", "dual_sourced"}
	rows := make([][]string, 0, len(report.ConstrainedRecommendations))
	for _, rec := range report.ConstrainedRecommendations {
		rows = append(rows, []string{
			rec.Category, rec.SupplierID, rec.SupplierName,
			strconv.FormatFloat(rec.ConstrainedShare, 'f', 6, 64),
			strconv.FormatFloat(rec.ProjectedQuantity, 'f', 2, 64),
			strconv.FormatFloat(rec.ProjectedSpend, 'f', 2, 64),
			strconv.FormatFloat(rec.AvgUnitCost, 'f', 4, 64),
			strconv.FormatBool(rec.DualSourced),
		})
	}
	return writeCSV(path, header, rows)
}

func writeCategoryCSV(report *analysis.Report, path string) error {
	header := []string{"category", "total_spend_ngn", "order_count", "spend_pct", "cumulative_pct"}
	rows := make([][]string, 0, len(report.Categories))
	for _, c := range report.Categories {
		rows = append(rows, []string{
			c.Category,
			strconv.FormatFloat(c.TotalSpend, 'f', 2, 64),
			strconv.Itoa(c.OrderCount),
			strconv.FormatFloat(c.SpendPct, 'f', 2, 64),
			strconv.FormatFloat(c.CumulativePct, 'f', 2, 64),
		})
	}
	return writeCSV(path, header, rows)
}

func writeScenarioCSV(report *analysis.Report, path string) error {
	header := []string{"scenario", "price_standardization_ngn", "performance_improvement_ngn",
		"consolidation_ngn", "total_savings_ngn", "savings_pct_of_spend"}
	rows := make([][]string, 0, len(report.Scenarios))
	for _, row := range report.Scenarios {
		rows = append(rows, []string{
			row.Name,
			strconv.FormatFloat(row.PriceStandardization, 'f', 2, 64),
			strconv.FormatFloat(row.PerformanceImprovement, 'f', 2, 64),
			strconv.FormatFloat(row.Consolidation, 'f', 2, 64),
			strconv.FormatFloat(row.TotalSavings, 'f', 2, 64),
			strconv.FormatFloat(row.SavingsPctOfSpend, 'f', 4, 64),
		})
	}
	return writeCSV(path, header, rows)
}

func writeMonteCarloCSV(report *analysis.Report, path string) error {
	header := []string{"metric", "mean", "median", "std_dev", "p05", "p25", "p75", "p95"}
	rows := [][]string{
		monteCarloRow("total_savings_ngn", report.MonteCarlo.TotalSavings),
		monteCarloRow("savings_pct_of_spend", report.MonteCarlo.SavingsPct),
	}
	return writeCSV(path, header, rows)
}

func monteCarloRow(metric string, s montecarlo.DistributionSummary) []string {
	return []string{
		metric,
		strconv.FormatFloat(s.Mean, 'f', 4, 64),
		strconv.FormatFloat(s.Median, 'f', 4, 64),
		strconv.FormatFloat(s.StdDev, 'f', 4, 64),
		strconv.FormatFloat(s.P05, 'f', 4, 64),
		strconv.FormatFloat(s.P25, 'f', 4, 64),
		strconv.FormatFloat(s.P75, 'f', 4, 64),
		strconv.FormatFloat(s.P95, 'f', 4, 64),
	}
}

func writeInsightsJSON(report *analysis.Report, path string) error {
	payload := struct {
		RunID       string                  `json:"run_id"`
		GeneratedAt string                  `json:"generated_at"`
		Insights    insights.SavingsInsight `json:"insights"`
	}{
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Insights:    report.Insights,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
