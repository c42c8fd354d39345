// Package optimizer ranks suppliers within each category by a weighted
// composite of cost, delivery, quality, and risk, then allocates proportional
// shares of the category's historical volume to the top performers.
package optimizer

import (
	"sort"

	"github.com/DavidMaco/procurement-spend-analysis/internal/config"
	"github.com/DavidMaco/procurement-spend-analysis/internal/metrics"
	"github.com/DavidMaco/procurement-spend-analysis/pkg/mathutil"
	"go.uber.org/zap"
)

// Recommendation is one recommended (category, supplier) allocation.
type Recommendation struct {
	Category     string
	SupplierID   string
	SupplierName string

	CompositeScore   float64
	RecommendedShare float64

	ProjectedQuantity float64
	ProjectedSpend    float64
	AvgUnitCost       float64

	HistoricalCategorySpend       float64
	HistoricalCategoryAvgUnitCost float64
}

// Summary compares the optimized allocation against the historical baseline,
// aggregated across all categories.
type Summary struct {
	HistoricalSpend float64
	OptimizedSpend  float64
	Savings         float64
	SavingsPct      float64
}

// Run produces allocation recommendations for every category with metric
// rows. Empty input yields an empty recommendation set and a zero summary
// rather than an error; callers check for emptiness before reporting.
func Run(logger *zap.Logger, rows []metrics.SupplierCategoryMetric, histories []metrics.CategoryHistory, cfg config.OptimizationConfig) ([]Recommendation, Summary) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(rows) == 0 {
		return nil, Summary{}
	}

	historyByCategory := metrics.HistoryByCategory(histories)
	categories, groups := metrics.GroupByCategory(rows)

	var recommendations []Recommendation
	optimizedByCategory := make(map[string]float64)

	for _, category := range categories {
		group := groups[category]
		history, ok := historyByCategory[category]
		if !ok {
			logger.Warn("category has metric rows but no purchase history; skipping",
				zap.String("op", "optimizer.Run"),
				zap.String("category", category),
			)
			continue
		}

		scores := compositeScores(group, cfg.ScoreWeights)

		selected := selectTop(group, scores, cfg.MaxSuppliersPerCategory)
		shares := allocateShares(selected.scores, cfg.MinSupplierShare)

		for i, m := range selected.rows {
			projectedQuantity := shares[i] * history.TotalQuantity
			projectedSpend := projectedQuantity * m.AvgUnitCost

			recommendations = append(recommendations, Recommendation{
				Category:                      m.Category,
				SupplierID:                    m.SupplierID,
				SupplierName:                  m.SupplierName,
				CompositeScore:                selected.scores[i],
				RecommendedShare:              shares[i],
				ProjectedQuantity:             projectedQuantity,
				ProjectedSpend:                projectedSpend,
				AvgUnitCost:                   m.AvgUnitCost,
				HistoricalCategorySpend:       history.TotalSpend,
				HistoricalCategoryAvgUnitCost: history.AvgUnitCost,
			})
			optimizedByCategory[category] += projectedSpend
		}
	}

	summary := summarize(histories, optimizedByCategory)

	logger.Debug("supplier optimization complete",
		zap.String("op", "optimizer.Run"),
		zap.Int("categories", len(categories)),
		zap.Int("recommendations", len(recommendations)),
		zap.Float64("savings", summary.Savings),
	)

	return recommendations, summary
}

type selection struct {
	rows   []metrics.SupplierCategoryMetric
	scores []float64
}

// compositeScores computes the weighted composite for each supplier in the
// category group. Cost and quality cost scale inverted (lower is better);
// delivery scales direct; risk uses the tier's fixed [0, 1] score.
func compositeScores(group []metrics.SupplierCategoryMetric, weights config.ScoreWeights) []float64 {
	costs := make([]float64, len(group))
	qualityCosts := make([]float64, len(group))
	for i, m := range group {
		costs[i] = m.AvgUnitCost
		qualityCosts[i] = m.QualityCost
	}

	costScores := minMaxScale(costs, false)
	qualityScores := minMaxScale(qualityCosts, false)
	deliveryScores := deliveryScale(group)

	scores := make([]float64, len(group))
	for i, m := range group {
		scores[i] = weights.UnitCost*costScores[i] +
			weights.Delivery*deliveryScores[i] +
			weights.Quality*qualityScores[i] +
			weights.Risk*m.Risk.Score()
	}
	return scores
}

// minMaxScale normalizes values to [0, 1]. When every value is identical the
// scale is degenerate and every supplier scores 1.0 for the dimension; ties
// stay neutral instead of collapsing to zero.
func minMaxScale(values []float64, higherIsBetter bool) []float64 {
	scaled := make([]float64, len(values))
	if len(values) == 0 {
		return scaled
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = mathutil.Min(min, v)
		max = mathutil.Max(max, v)
	}

	if max == min {
		for i := range scaled {
			scaled[i] = 1.0
		}
		return scaled
	}

	for i, v := range values {
		s := (v - min) / (max - min)
		if !higherIsBetter {
			s = 1 - s
		}
		scaled[i] = s
	}
	return scaled
}

// deliveryScale normalizes on-time-delivery percentages. Suppliers with no
// recorded actual deliveries have an undefined percentage and take the worst
// possible score for the dimension.
func deliveryScale(group []metrics.SupplierCategoryMetric) []float64 {
	var observed []float64
	for _, m := range group {
		if m.DeliveryObserved {
			observed = append(observed, m.OnTimeDeliveryPct)
		}
	}

	scores := make([]float64, len(group))
	if len(observed) == 0 {
		return scores
	}

	min, max := observed[0], observed[0]
	for _, v := range observed[1:] {
		min = mathutil.Min(min, v)
		max = mathutil.Max(max, v)
	}

	for i, m := range group {
		if !m.DeliveryObserved {
			continue
		}
		if max == min {
			scores[i] = 1.0
			continue
		}
		scores[i] = (m.OnTimeDeliveryPct - min) / (max - min)
	}
	return scores
}

// selectTop returns the maxSuppliers best-scoring suppliers, descending.
// The sort is stable so score ties break on original row order.
func selectTop(group []metrics.SupplierCategoryMetric, scores []float64, maxSuppliers int) selection {
	order := make([]int, len(group))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if maxSuppliers < len(order) {
		order = order[:maxSuppliers]
	}

	sel := selection{
		rows:   make([]metrics.SupplierCategoryMetric, len(order)),
		scores: make([]float64, len(order)),
	}
	for i, idx := range order {
		sel.rows[i] = group[idx]
		sel.scores[i] = scores[idx]
	}
	return sel
}

// allocateShares converts composite scores into allocation shares: base share
// proportional to score (equal split when all scores are zero), clipped up to
// minShare, then renormalized to sum exactly to 1. The clip-then-renormalize
// order can lift the smallest suppliers above strict proportionality, which
// keeps real-world allocations away from near-zero volumes.
func allocateShares(scores []float64, minShare float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}

	shares := make([]float64, len(scores))
	if total > 0 {
		for i, s := range scores {
			shares[i] = s / total
		}
	} else {
		equal := 1.0 / float64(len(scores))
		for i := range shares {
			shares[i] = equal
		}
	}

	adjustedTotal := 0.0
	for i := range shares {
		shares[i] = mathutil.Max(shares[i], minShare)
		adjustedTotal += shares[i]
	}
	for i := range shares {
		shares[i] /= adjustedTotal
	}
	return shares
}

// summarize compares historical spend against the optimized allocation.
// Categories that produced no recommendations keep their historical spend,
// and aggregate savings never go negative.
func summarize(histories []metrics.CategoryHistory, optimizedByCategory map[string]float64) Summary {
	var historicalSpend, optimizedSpend float64
	for _, h := range histories {
		historicalSpend += h.TotalSpend
		if projected, ok := optimizedByCategory[h.Category]; ok {
			optimizedSpend += projected
		} else {
			optimizedSpend += h.TotalSpend
		}
	}

	savings := mathutil.Max(0, historicalSpend-optimizedSpend)
	return Summary{
		HistoricalSpend: historicalSpend,
		OptimizedSpend:  optimizedSpend,
		Savings:         savings,
		SavingsPct:      mathutil.CalculatePercentage(savings, historicalSpend),
	}
}
