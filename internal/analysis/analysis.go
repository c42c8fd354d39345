// Package analysis orchestrates the full spend analysis pipeline: descriptive
// insights, both allocators, scenario evaluation, and the Monte Carlo savings
// simulation, collected into a single Report.
package analysis

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/constrained"
	"github.com/DavidMaco/procurement-spend-analysis/internal/insights"
	"github.com/DavidMaco/procurement-spend-analysis/internal/metrics"
	"github.com/DavidMaco/procurement-spend-analysis/internal/montecarlo"
	"github.com/DavidMaco/procurement-spend-analysis/internal/optimizer"
	"github.com/DavidMaco/procurement-spend-analysis/internal/scenario"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Report is the complete output of one analysis run.
type Report struct {
	RunID       string
	GeneratedAt time.Time

	Insights   insights.SavingsInsight
	Categories []insights.CategorySpend

	OptimizerRecommendations []optimizer.Recommendation
	OptimizerSummary         optimizer.Summary

	ConstrainedRecommendations []constrained.Recommendation
	ConstrainedSummary         constrained.Summary

	Scenarios  []scenario.Row
	MonteCarlo montecarlo.Result
}

// Run executes the pipeline stages in order against the given database.
func Run(logger *zap.Logger, db *sql.DB, conf config.Configuration) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
	}

	logger.Info("starting spend analysis",
		zap.String("op", "analysis.Run"),
		zap.String("runID", report.RunID),
	)

	insight, err := insights.Build(logger, db)
	if err != nil {
		return nil, fmt.Errorf("insights stage failed: %w", err)
	}

	report.Categories, err = insights.CategoryBreakdown(db)
	if err != nil {
		return nil, fmt.Errorf("category breakdown stage failed: %w", err)
	}

	rows, err := metrics.SupplierMetrics(db)
	if err != nil {
		return nil, fmt.Errorf("supplier metrics stage failed: %w", err)
	}
	histories, err := metrics.CategoryHistories(db)
	if err != nil {
		return nil, fmt.Errorf("category history stage failed: %w", err)
	}

	report.OptimizerRecommendations, report.OptimizerSummary = optimizer.Run(logger, rows, histories, conf.Optimization)
	insight.OptimizationSavings = report.OptimizerSummary.Savings
	insight.OptimizationSavingsPct = report.OptimizerSummary.SavingsPct

	report.ConstrainedRecommendations, report.ConstrainedSummary = constrained.Run(logger, rows, histories, conf.Constraints)
	insight.ConstrainedSavings = report.ConstrainedSummary.Savings
	insight.ConstrainedSavingsPct = report.ConstrainedSummary.SavingsPct
	insight.DualSourcedCategories = report.ConstrainedSummary.DualSourcedCategories

	report.Insights = insight
	report.Scenarios = scenario.Run(insight, conf.Scenarios)
	report.MonteCarlo = montecarlo.Run(logger, insight, conf.MonteCarlo)

	logger.Info("spend analysis complete",
		zap.String("op", "analysis.Run"),
		zap.String("runID", report.RunID),
		zap.Int("supplierMetricRows", len(rows)),
		zap.Int("categories", len(histories)),
		zap.Float64("identifiedSavings", mathutil.Round(insight.TotalSavings)),
	)

	return report, nil
}
