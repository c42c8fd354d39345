// Package insights derives the headline savings levers from procurement
// history through read-only SQL aggregation. The SavingsInsight record is the
// contract between the descriptive analysis, the allocators, the scenario
// table, and the Monte Carlo simulation.
package insights

import (
	"database/sql"
	"fmt"

	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
	"go.uber.org/zap"
)

// SavingsInsight carries every named scalar estimate produced by a run. Each
// metric is an explicit field so a missing or renamed figure fails at compile
// time rather than at report time.
type SavingsInsight struct {
	// Executive summary
	TotalOrders    int     `json:"total_orders"`
	TotalSuppliers int     `json:"total_suppliers"`
	TotalSpend     float64 `json:"total_spend_ngn"`
	AvgOrderValue  float64 `json:"avg_order_value_ngn"`

	// Savings levers
	PriceStandardizationSavings   float64 `json:"price_standardization_savings_ngn"`
	PerformanceImprovementSavings float64 `json:"performance_improvement_savings_ngn"`
	ConsolidationSavings          float64 `json:"consolidation_savings_ngn"`
	TotalSavings                  float64 `json:"total_savings_ngn"`
	SavingsPct                    float64 `json:"savings_pct_of_spend"`

	// Risk exposure
	MaverickSpend   float64 `json:"maverick_spend_ngn"`
	USDSpend        float64 `json:"usd_spend"`
	FXVolatilityPct float64 `json:"fx_volatility_pct"`

	// Filled in by the allocation stages
	OptimizationSavings    float64 `json:"optimization_savings_ngn"`
	OptimizationSavingsPct float64 `json:"optimization_savings_pct"`
	ConstrainedSavings     float64 `json:"constrained_savings_ngn"`
	ConstrainedSavingsPct  float64 `json:"constrained_savings_pct"`
	DualSourcedCategories  int     `json:"dual_sourced_categories"`
}

// CategorySpend is one row of the category Pareto breakdown.
type CategorySpend struct {
	Category      string
	TotalSpend    float64
	OrderCount    int
	SpendPct      float64
	CumulativePct float64
}

const execSummaryQuery = `
SELECT
    COUNT(DISTINCT po_number) AS total_orders,
    COUNT(DISTINCT supplier_id) AS total_suppliers,
    ROUND(COALESCE(SUM(total_amount_ngn), 0), 0) AS total_spend_ngn,
    ROUND(COALESCE(AVG(total_amount_ngn), 0), 0) AS avg_order_value
FROM purchase_orders
`

const priceVarianceQuery = `
SELECT
    ROUND(SUM(total_amount_ngn) * (AVG(unit_price_ngn) - MIN(unit_price_ngn)) / AVG(unit_price_ngn), 0) AS potential_savings
FROM purchase_orders
GROUP BY material_name, category
HAVING COUNT(DISTINCT supplier_id) > 1
   AND (AVG(unit_price_ngn) - MIN(unit_price_ngn)) / MIN(unit_price_ngn) * 100 > ?
ORDER BY potential_savings DESC
LIMIT ?
`

const poorPerformersQuery = `
SELECT
    COALESCE(qi.quality_cost, 0) AS quality_cost,
    SUM(po.total_amount_ngn) AS total_spend
FROM purchase_orders po
LEFT JOIN (
    SELECT supplier_id,
           COUNT(DISTINCT incident_id) AS incidents,
           SUM(cost_impact_ngn) AS quality_cost
    FROM quality_incidents
    GROUP BY supplier_id
) qi ON qi.supplier_id = po.supplier_id
GROUP BY po.supplier_id
HAVING (
    SUM(CASE WHEN po.actual_delivery_date <= po.expected_delivery_date THEN 1 ELSE 0 END) * 100.0 /
        NULLIF(COUNT(CASE WHEN po.actual_delivery_date IS NOT NULL THEN 1 END), 0) < ?
    OR COALESCE(qi.incidents, 0) > ?
) AND COUNT(DISTINCT po.po_number) > ?
ORDER BY total_spend DESC
LIMIT ?
`

const fragmentationQuery = `
SELECT ROUND(SUM(total_amount_ngn), 0) AS total_spend
FROM purchase_orders
GROUP BY category
HAVING COUNT(DISTINCT supplier_id) > ?
`

const maverickQuery = `
SELECT ROUND(COALESCE(SUM(po.total_amount_ngn), 0), 0) AS maverick_spend
FROM purchase_orders po
JOIN suppliers s ON po.supplier_id = s.supplier_id
WHERE s.is_approved = 0 OR s.risk_level = 'High'
`

const fxExposureQuery = `
SELECT
    ROUND(SUM(total_amount_usd), 0) AS total_usd_spend,
    ROUND(MIN(total_amount_ngn / NULLIF(total_amount_usd, 0)), 2) AS min_fx_rate,
    ROUND(MAX(total_amount_ngn / NULLIF(total_amount_usd, 0)), 2) AS max_fx_rate
FROM purchase_orders
WHERE currency = 'USD' AND total_amount_usd > 0
`

// Build runs the descriptive aggregation queries and assembles the
// SavingsInsight record. An empty history produces a zero-valued record, not
// an error.
func Build(logger *zap.Logger, db *sql.DB) (SavingsInsight, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var insight SavingsInsight

	var totalSpend, avgOrderValue sql.NullFloat64
	err := db.QueryRow(execSummaryQuery).Scan(
		&insight.TotalOrders,
		&insight.TotalSuppliers,
		&totalSpend,
		&avgOrderValue,
	)
	if err != nil {
		return SavingsInsight{}, fmt.Errorf("executive summary query failed: %w", err)
	}
	insight.TotalSpend = totalSpend.Float64
	insight.AvgOrderValue = avgOrderValue.Float64

	priceSavings, err := sumColumn(db, priceVarianceQuery,
		constants.PriceVarianceMinOverpaymentPct, constants.PriceVarianceTopOpportunities)
	if err != nil {
		return SavingsInsight{}, fmt.Errorf("price variance query failed: %w", err)
	}
	insight.PriceStandardizationSavings = priceSavings

	qualityCost, lateSpend, err := poorPerformerTotals(db)
	if err != nil {
		return SavingsInsight{}, fmt.Errorf("poor performers query failed: %w", err)
	}
	insight.PerformanceImprovementSavings = qualityCost + lateSpend*constants.LateDeliveryCostRate

	fragmentedSpend, err := sumColumn(db, fragmentationQuery, constants.FragmentationSupplierThreshold)
	if err != nil {
		return SavingsInsight{}, fmt.Errorf("fragmentation query failed: %w", err)
	}
	insight.ConsolidationSavings = fragmentedSpend * constants.ConsolidationSavingsRate

	var maverickSpend sql.NullFloat64
	if err := db.QueryRow(maverickQuery).Scan(&maverickSpend); err != nil {
		return SavingsInsight{}, fmt.Errorf("maverick spend query failed: %w", err)
	}
	insight.MaverickSpend = maverickSpend.Float64

	var usdSpend, minFXRate, maxFXRate sql.NullFloat64
	if err := db.QueryRow(fxExposureQuery).Scan(&usdSpend, &minFXRate, &maxFXRate); err != nil {
		return SavingsInsight{}, fmt.Errorf("fx exposure query failed: %w", err)
	}
	if usdSpend.Valid && minFXRate.Valid && minFXRate.Float64 > 0 {
		insight.USDSpend = usdSpend.Float64
		insight.FXVolatilityPct = (maxFXRate.Float64 - minFXRate.Float64) / minFXRate.Float64 * constants.PercentageMultiplier
	}

	insight.TotalSavings = insight.PriceStandardizationSavings +
		insight.PerformanceImprovementSavings +
		insight.ConsolidationSavings
	insight.SavingsPct = mathutil.CalculatePercentage(insight.TotalSavings, insight.TotalSpend)

	logger.Debug("savings insights assembled",
		zap.String("op", "insights.Build"),
		zap.Float64("totalSpend", insight.TotalSpend),
		zap.Float64("totalSavings", insight.TotalSavings),
	)

	return insight, nil
}

const categoryBreakdownQuery = `
SELECT
    category,
    ROUND(SUM(total_amount_ngn), 0) AS total_spend,
    COUNT(DISTINCT po_number) AS order_count
FROM purchase_orders
GROUP BY category
ORDER BY SUM(total_amount_ngn) DESC
`

// CategoryBreakdown returns per-category spend in descending order with
// running cumulative percentages, the Pareto view of where the money goes.
func CategoryBreakdown(db *sql.DB) ([]CategorySpend, error) {
	rows, err := db.Query(categoryBreakdownQuery)
	if err != nil {
		return nil, fmt.Errorf("category breakdown query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var breakdown []CategorySpend
	var totalSpend float64
	for rows.Next() {
		var c CategorySpend
		var spend sql.NullFloat64
		if err := rows.Scan(&c.Category, &spend, &c.OrderCount); err != nil {
			return nil, fmt.Errorf("category breakdown scan failed: %w", err)
		}
		c.TotalSpend = spend.Float64
		totalSpend += c.TotalSpend
		breakdown = append(breakdown, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category breakdown iteration failed: %w", err)
	}

	cumulative := 0.0
	for i := range breakdown {
		breakdown[i].SpendPct = mathutil.CalculatePercentage(breakdown[i].TotalSpend, totalSpend)
		cumulative += breakdown[i].SpendPct
		breakdown[i].CumulativePct = cumulative
	}
	return breakdown, nil
}

// sumColumn totals the single numeric column of a grouped query, treating
// NULL group values as zero.
func sumColumn(db *sql.DB, query string, args ...any) (float64, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var total float64
	for rows.Next() {
		var value sql.NullFloat64
		if err := rows.Scan(&value); err != nil {
			return 0, err
		}
		total += value.Float64
	}
	return total, rows.Err()
}

func poorPerformerTotals(db *sql.DB) (qualityCost, affectedSpend float64, err error) {
	rows, err := db.Query(poorPerformersQuery,
		constants.PoorPerformerOTDFloorPct,
		constants.PoorPerformerIncidentCeiling,
		constants.PoorPerformerMinOrders,
		constants.PoorPerformerLimit,
	)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var cost, spend sql.NullFloat64
		if err := rows.Scan(&cost, &spend); err != nil {
			return 0, 0, err
		}
		qualityCost += cost.Float64
		affectedSpend += spend.Float64
	}
	return qualityCost, affectedSpend, rows.Err()
}
