// Package metrics reduces purchase-order history into per-(category, supplier)
// aggregates and per-category totals. Both allocators consume these rows; the
// aggregation is recomputed fresh on every call and never cached.
package metrics

import (
	"database/sql"
	"fmt"
)

// RiskLevel is the ordinal supplier risk classification.
type RiskLevel string

// Known risk tiers. Anything else (including an empty value) is treated as
// an unknown tier: mid-low composite score, least-eligible ordinal rank.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Score returns the composite-score contribution of the risk tier, on the
// same [0, 1] scale as the min-max normalized dimensions.
func (r RiskLevel) Score() float64 {
	switch r {
	case RiskLow:
		return 1.0
	case RiskMedium:
		return 0.6
	case RiskHigh:
		return 0.2
	default:
		return 0.4
	}
}

// Rank returns the eligibility rank of the risk tier; lower is safer.
// Unknown tiers rank above High so a risk cap always excludes them.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 3
	}
}

// SupplierCategoryMetric aggregates one supplier's history within one category.
type SupplierCategoryMetric struct {
	Category     string
	SupplierID   string
	SupplierName string

	TotalQuantity float64
	TotalSpend    float64
	AvgUnitCost   float64

	// OnTimeDeliveryPct is only meaningful when DeliveryObserved is true.
	// When no order for the pair has a recorded actual delivery date the
	// percentage is undefined: the unconstrained allocator scores it as the
	// worst delivery performance and the constrained allocator treats the
	// supplier as ineligible.
	OnTimeDeliveryPct float64
	DeliveryObserved  bool

	QualityIncidentCount int
	QualityCost          float64
	TotalOrders          int
	Risk                 RiskLevel
}

// CategoryHistory totals one category's full purchase history. Projected
// allocations distribute over this historical quantity.
type CategoryHistory struct {
	Category      string
	TotalQuantity float64
	TotalSpend    float64
	AvgUnitCost   float64
}

const supplierMetricsQuery = `
SELECT
    po.category,
    po.supplier_id,
    po.supplier_name,
    ROUND(SUM(po.quantity), 2) AS total_quantity,
    ROUND(SUM(po.total_amount_ngn), 2) AS total_spend_ngn,
    ROUND(SUM(po.total_amount_ngn) / NULLIF(SUM(po.quantity), 0), 4) AS avg_unit_cost_ngn,
    ROUND(
      SUM(CASE WHEN po.actual_delivery_date <= po.expected_delivery_date THEN 1 ELSE 0 END) * 100.0 /
      NULLIF(COUNT(CASE WHEN po.actual_delivery_date IS NOT NULL THEN 1 END), 0),
      2
    ) AS on_time_delivery_pct,
    COUNT(DISTINCT qi.incident_id) AS quality_incident_count,
    ROUND(COALESCE(SUM(qi.cost_impact_ngn), 0), 2) AS quality_cost_ngn,
    COUNT(DISTINCT po.po_number) AS total_orders,
    s.risk_level
FROM purchase_orders po
JOIN suppliers s ON po.supplier_id = s.supplier_id
LEFT JOIN quality_incidents qi ON po.po_number = qi.po_number
GROUP BY po.category, po.supplier_id, po.supplier_name, s.risk_level
HAVING total_quantity > 0
ORDER BY po.category, po.supplier_id
`

const categoryHistoryQuery = `
SELECT
    category,
    ROUND(SUM(quantity), 2) AS category_quantity,
    ROUND(SUM(total_amount_ngn), 2) AS category_spend_ngn,
    ROUND(SUM(total_amount_ngn) / NULLIF(SUM(quantity), 0), 4) AS category_avg_unit_cost
FROM purchase_orders
GROUP BY category
ORDER BY category
`

// SupplierMetrics aggregates the (category, supplier) metrics from the
// purchase history. Pairs with zero aggregated quantity are excluded; there
// is no allocation basis for them.
func SupplierMetrics(db *sql.DB) ([]SupplierCategoryMetric, error) {
	rows, err := db.Query(supplierMetricsQuery)
	if err != nil {
		return nil, fmt.Errorf("supplier metrics query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []SupplierCategoryMetric
	for rows.Next() {
		var (
			m           SupplierCategoryMetric
			avgUnitCost sql.NullFloat64
			otdPct      sql.NullFloat64
			riskLevel   sql.NullString
		)
		err := rows.Scan(
			&m.Category,
			&m.SupplierID,
			&m.SupplierName,
			&m.TotalQuantity,
			&m.TotalSpend,
			&avgUnitCost,
			&otdPct,
			&m.QualityIncidentCount,
			&m.QualityCost,
			&m.TotalOrders,
			&riskLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("supplier metrics scan failed: %w", err)
		}

		if avgUnitCost.Valid {
			m.AvgUnitCost = avgUnitCost.Float64
		}
		if otdPct.Valid {
			m.OnTimeDeliveryPct = otdPct.Float64
			m.DeliveryObserved = true
		}
		m.Risk = RiskLevel(riskLevel.String)

		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("supplier metrics iteration failed: %w", err)
	}

	return result, nil
}

// CategoryHistories totals the full purchase history per category.
func CategoryHistories(db *sql.DB) ([]CategoryHistory, error) {
	rows, err := db.Query(categoryHistoryQuery)
	if err != nil {
		return nil, fmt.Errorf("category history query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []CategoryHistory
	for rows.Next() {
		var (
			h           CategoryHistory
			avgUnitCost sql.NullFloat64
		)
		if err := rows.Scan(&h.Category, &h.TotalQuantity, &h.TotalSpend, &avgUnitCost); err != nil {
			return nil, fmt.Errorf("category history scan failed: %w", err)
		}
		if avgUnitCost.Valid {
			h.AvgUnitCost = avgUnitCost.Float64
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category history iteration failed: %w", err)
	}

	return result, nil
}

// GroupByCategory splits metric rows into per-category slices, preserving row
// order within each category, and returns the category keys in first-seen
// order. Allocators iterate the keys and materialize each category's slice
// before scoring, so nothing accumulates across categories.
func GroupByCategory(rows []SupplierCategoryMetric) ([]string, map[string][]SupplierCategoryMetric) {
	var categories []string
	groups := make(map[string][]SupplierCategoryMetric)
	for _, row := range rows {
		if _, seen := groups[row.Category]; !seen {
			categories = append(categories, row.Category)
		}
		groups[row.Category] = append(groups[row.Category], row)
	}
	return categories, groups
}

// HistoryByCategory indexes category history rows by category key.
func HistoryByCategory(histories []CategoryHistory) map[string]CategoryHistory {
	byCategory := make(map[string]CategoryHistory, len(histories))
	for _, h := range histories {
		byCategory[h.Category] = h
	}
	return byCategory
}
