// Package constrained allocates category spend across suppliers under hard
// service-level, quality, and risk constraints, enforcing dual sourcing for
// categories whose historical spend exceeds a configured threshold.
package constrained

import (
	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/metrics"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/constants"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
	"go.uber.org/zap"
)

// Recommendation is one constrained (category, supplier) allocation.
type Recommendation struct {
	Category     string
	SupplierID   string
	SupplierName string

	ConstrainedShare float64

	ProjectedQuantity float64
	ProjectedSpend    float64
	AvgUnitCost       float64

	HistoricalCategorySpend float64
	DualSourced             bool
}

// Summary aggregates the constrained allocation across all categories.
type Summary struct {
	ConstrainedSpend      float64
	Savings               float64
	SavingsPct            float64
	DualSourcedCategories int
}

// Run produces constraint-enforced recommendations. Every category with
// metric rows and history gets at least one recommendation: when no supplier
// passes the eligibility gates the cheapest supplier is taken with
// constraints relaxed, and when none passes the price threshold the cheapest
// eligible supplier is taken. Empty input yields an empty set and a zero
// summary, never an error.
func Run(logger *zap.Logger, rows []metrics.SupplierCategoryMetric, histories []metrics.CategoryHistory, cfg config.ConstraintsConfig) ([]Recommendation, Summary) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(rows) == 0 {
		return nil, Summary{}
	}

	historyByCategory := metrics.HistoryByCategory(histories)
	categories, groups := metrics.GroupByCategory(rows)
	maxRiskRank := metrics.RiskLevel(cfg.MaxRiskLevel).Rank()

	var recommendations []Recommendation
	var totalHistoricalSpend, totalConstrainedSpend float64
	dualSourcedCategories := 0

	for _, category := range categories {
		group := groups[category]
		history, ok := historyByCategory[category]
		if !ok {
			continue
		}

		eligible := eligibleSuppliers(group, cfg, maxRiskRank)
		if len(eligible) == 0 {
			// Relax eligibility rather than leave the category unserved.
			eligible = []metrics.SupplierCategoryMetric{cheapest(group)}
		}

		qualified := priceQualified(eligible, cfg.MinPricePercentile)
		if len(qualified) == 0 {
			qualified = []metrics.SupplierCategoryMetric{cheapest(eligible)}
		}

		totalHistoricalSpend += history.TotalSpend

		enforceDualSource := history.TotalSpend > cfg.MinDualSourceThreshold && len(qualified) > 1

		if enforceDualSource {
			primary := cheapest(qualified)
			primaryShare := mathutil.Min(constants.DualSourcePrimaryShareCap, cfg.MaxSingleSupplierShare)

			secondary, found := cheapestExcluding(qualified, primary.SupplierID)
			if found {
				primaryRec := buildRecommendation(primary, primaryShare, history, true)
				secondaryRec := buildRecommendation(secondary, 1.0-primaryShare, history, true)
				recommendations = append(recommendations, primaryRec, secondaryRec)
				totalConstrainedSpend += primaryRec.ProjectedSpend + secondaryRec.ProjectedSpend
				dualSourcedCategories++
				continue
			}

			logger.Debug("dual sourcing required but no distinct secondary supplier qualified",
				zap.String("op", "constrained.Run"),
				zap.String("category", category),
			)
		}

		rec := buildRecommendation(cheapest(qualified), 1.0, history, false)
		recommendations = append(recommendations, rec)
		totalConstrainedSpend += rec.ProjectedSpend
	}

	savings := mathutil.Max(0, totalHistoricalSpend-totalConstrainedSpend)
	summary := Summary{
		ConstrainedSpend:      totalConstrainedSpend,
		Savings:               savings,
		SavingsPct:            mathutil.CalculatePercentage(savings, totalHistoricalSpend),
		DualSourcedCategories: dualSourcedCategories,
	}

	logger.Debug("constrained optimization complete",
		zap.String("op", "constrained.Run"),
		zap.Int("recommendations", len(recommendations)),
		zap.Int("dualSourcedCategories", dualSourcedCategories),
		zap.Float64("savings", savings),
	)

	return recommendations, summary
}

// eligibleSuppliers applies the hard gates: OTD floor, quality incident
// ceiling, and risk tier cap. Suppliers with an undefined OTD percentage
// fail the floor.
func eligibleSuppliers(group []metrics.SupplierCategoryMetric, cfg config.ConstraintsConfig, maxRiskRank int) []metrics.SupplierCategoryMetric {
	var eligible []metrics.SupplierCategoryMetric
	for _, m := range group {
		if !m.DeliveryObserved || m.OnTimeDeliveryPct < cfg.MinOnTimeDeliveryPct {
			continue
		}
		if float64(m.QualityIncidentCount) > cfg.MaxQualityIncidentsPerOrder {
			continue
		}
		if m.Risk.Rank() > maxRiskRank {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}

// priceQualified keeps suppliers priced at or below the percentile-derived
// threshold: maxPrice - (1 - minPercentile) * priceRange. A degenerate price
// range substitutes a fixed proxy range of 1.0.
func priceQualified(eligible []metrics.SupplierCategoryMetric, minPricePercentile float64) []metrics.SupplierCategoryMetric {
	if len(eligible) == 0 {
		return nil
	}

	minPrice, maxPrice := eligible[0].AvgUnitCost, eligible[0].AvgUnitCost
	for _, m := range eligible[1:] {
		minPrice = mathutil.Min(minPrice, m.AvgUnitCost)
		maxPrice = mathutil.Max(maxPrice, m.AvgUnitCost)
	}

	priceRange := maxPrice - minPrice
	if priceRange <= 0 {
		priceRange = 1.0
	}
	threshold := maxPrice - (1.0-minPricePercentile)*priceRange

	var qualified []metrics.SupplierCategoryMetric
	for _, m := range eligible {
		if m.AvgUnitCost <= threshold {
			qualified = append(qualified, m)
		}
	}
	return qualified
}

// cheapest returns the supplier with the lowest average unit cost; ties break
// on row order.
func cheapest(suppliers []metrics.SupplierCategoryMetric) metrics.SupplierCategoryMetric {
	best := suppliers[0]
	for _, m := range suppliers[1:] {
		if m.AvgUnitCost < best.AvgUnitCost {
			best = m
		}
	}
	return best
}

// cheapestExcluding returns the cheapest supplier with a different supplier
// id, if one exists.
func cheapestExcluding(suppliers []metrics.SupplierCategoryMetric, excludeID string) (metrics.SupplierCategoryMetric, bool) {
	var best metrics.SupplierCategoryMetric
	found := false
	for _, m := range suppliers {
		if m.SupplierID == excludeID {
			continue
		}
		if !found || m.AvgUnitCost < best.AvgUnitCost {
			best = m
			found = true
		}
	}
	return best, found
}

func buildRecommendation(m metrics.SupplierCategoryMetric, share float64, history metrics.CategoryHistory, dualSourced bool) Recommendation {
	projectedQuantity := share * history.TotalQuantity
	return Recommendation{
		Category:                m.Category,
		SupplierID:              m.SupplierID,
		SupplierName:            m.SupplierName,
		ConstrainedShare:        share,
		ProjectedQuantity:       projectedQuantity,
		ProjectedSpend:          projectedQuantity * m.AvgUnitCost,
		AvgUnitCost:             m.AvgUnitCost,
		HistoricalCategorySpend: history.TotalSpend,
		DualSourced:             dualSourced,
	}
}
