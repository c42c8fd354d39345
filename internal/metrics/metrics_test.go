package metrics

import (
	"database/sql"
	"math"
	"testing"

	"github.com/DavidMaco/procurement-spend-analysis/pkg/testutil"
)

func seedHistory(t *testing.T) *sql.DB {
	t.Helper()
	db := testutil.OpenTestDB(t)

	testutil.InsertSupplier(t, db, "S1", "Alpha Materials", "Low", true)
	testutil.InsertSupplier(t, db, "S2", "Beta Trading", "Medium", true)
	testutil.InsertSupplier(t, db, "S3", "Gamma Steel", "High", false)

	testutil.InsertPurchaseOrder(t, db, testutil.PurchaseOrder{
		PONumber: "PO1", SupplierID: "S1", SupplierName: "Alpha Materials",
		Category: "Cement", MaterialName: "Cement 42.5R", Quantity: 10, UnitPrice: 100,
		ExpectedDeliveryDate: "2025-01-10", ActualDeliveryDate: "2025-01-09",
	})
	testutil.InsertPurchaseOrder(t, db, testutil.PurchaseOrder{
		PONumber: "PO2", SupplierID: "S1", SupplierName: "Alpha Materials",
		Category: "Cement", MaterialName: "Cement 42.5R", Quantity: 10, UnitPrice: 120,
		ExpectedDeliveryDate: "2025-02-10", ActualDeliveryDate: "2025-02-12",
	})
	testutil.InsertPurchaseOrder(t, db, testutil.PurchaseOrder{
		PONumber: "PO3", SupplierID: "S2", SupplierName: "Beta Trading",
		Category: "Cement", MaterialName: "Cement 42.5R", Quantity: 5, UnitPrice: 110,
		ExpectedDeliveryDate: "2025-03-10",
	})
	testutil.InsertPurchaseOrder(t, db, testutil.PurchaseOrder{
		PONumber: "PO4", SupplierID: "S3", SupplierName: "Gamma Steel",
		Category: "Steel", MaterialName: "Rebar 12mm", Quantity: 20, UnitPrice: 50,
		ExpectedDeliveryDate: "2025-01-20", ActualDeliveryDate: "2025-01-18",
	})
	// Zero quantity: no allocation basis, must not surface as a metric row.
	testutil.InsertPurchaseOrder(t, db, testutil.PurchaseOrder{
		PONumber: "PO5", SupplierID: "S2", SupplierName: "Beta Trading",
		Category: "Misc", MaterialName: "Samples", Quantity: 0, UnitPrice: 10,
	})

	testutil.InsertQualityIncident(t, db, "QI1", "PO1", "S1", 150)
	testutil.InsertQualityIncident(t, db, "QI2", "PO2", "S1", 50)

	return db
}

func TestSupplierMetricsAggregation(t *testing.T) {
	db := seedHistory(t)

	rows, err := SupplierMetrics(db)
	if err != nil {
		t.Fatalf("SupplierMetrics failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 metric rows, got %d", len(rows))
	}

	s1 := rows[0]
	if s1.Category != "Cement" || s1.SupplierID != "S1" {
		t.Fatalf("expected Cement/S1 first, got %s/%s", s1.Category, s1.SupplierID)
	}
	if s1.TotalQuantity != 20 {
		t.Errorf("expected S1 quantity 20, got %v", s1.TotalQuantity)
	}
	if s1.TotalSpend != 2200 {
		t.Errorf("expected S1 spend 2200, got %v", s1.TotalSpend)
	}
	if math.Abs(s1.AvgUnitCost-110) > 0.01 {
		t.Errorf("expected S1 avg unit cost 110, got %v", s1.AvgUnitCost)
	}
	if !s1.DeliveryObserved || math.Abs(s1.OnTimeDeliveryPct-50) > 0.01 {
		t.Errorf("expected S1 OTD 50%%, got %v (observed %t)", s1.OnTimeDeliveryPct, s1.DeliveryObserved)
	}
	if s1.QualityIncidentCount != 2 {
		t.Errorf("expected 2 incidents for S1, got %d", s1.QualityIncidentCount)
	}
	if s1.QualityCost != 200 {
		t.Errorf("expected S1 quality cost 200, got %v", s1.QualityCost)
	}
	if s1.TotalOrders != 2 {
		t.Errorf("expected 2 orders for S1, got %d", s1.TotalOrders)
	}
	if s1.Risk != RiskLow {
		t.Errorf("expected S1 risk Low, got %s", s1.Risk)
	}

	s2 := rows[1]
	if s2.SupplierID != "S2" {
		t.Fatalf("expected Cement/S2 second, got %s/%s", s2.Category, s2.SupplierID)
	}
	if s2.DeliveryObserved {
		t.Errorf("S2 has no actual deliveries, OTD should be unobserved")
	}
	if s2.QualityIncidentCount != 0 || s2.QualityCost != 0 {
		t.Errorf("expected no quality incidents for S2, got %d / %v",
			s2.QualityIncidentCount, s2.QualityCost)
	}

	s3 := rows[2]
	if s3.Category != "Steel" || s3.SupplierID != "S3" {
		t.Fatalf("expected Steel/S3 last, got %s/%s", s3.Category, s3.SupplierID)
	}
	if !s3.DeliveryObserved || math.Abs(s3.OnTimeDeliveryPct-100) > 0.01 {
		t.Errorf("expected S3 OTD 100%%, got %v", s3.OnTimeDeliveryPct)
	}
	if s3.Risk != RiskHigh {
		t.Errorf("expected S3 risk High, got %s", s3.Risk)
	}
}

func TestCategoryHistoriesAggregation(t *testing.T) {
	db := seedHistory(t)

	histories, err := CategoryHistories(db)
	if err != nil {
		t.Fatalf("CategoryHistories failed: %v", err)
	}

	if len(histories) != 3 {
		t.Fatalf("expected 3 category histories, got %d", len(histories))
	}

	cement := histories[0]
	if cement.Category != "Cement" {
		t.Fatalf("expected Cement first, got %s", cement.Category)
	}
	if cement.TotalQuantity != 25 {
		t.Errorf("expected Cement quantity 25, got %v", cement.TotalQuantity)
	}
	if cement.TotalSpend != 2750 {
		t.Errorf("expected Cement spend 2750, got %v", cement.TotalSpend)
	}
	if math.Abs(cement.AvgUnitCost-110) > 0.01 {
		t.Errorf("expected Cement avg unit cost 110, got %v", cement.AvgUnitCost)
	}

	misc := histories[1]
	if misc.Category != "Misc" {
		t.Fatalf("expected Misc second, got %s", misc.Category)
	}
	// Zero quantity leaves the average undefined, which scans as zero.
	if misc.AvgUnitCost != 0 {
		t.Errorf("expected zero avg unit cost for zero-quantity category, got %v", misc.AvgUnitCost)
	}
}

func TestSupplierMetricsEmptyDatabase(t *testing.T) {
	db := testutil.OpenTestDB(t)

	rows, err := SupplierMetrics(db)
	if err != nil {
		t.Fatalf("SupplierMetrics failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows on empty history, got %d", len(rows))
	}

	histories, err := CategoryHistories(db)
	if err != nil {
		t.Fatalf("CategoryHistories failed: %v", err)
	}
	if len(histories) != 0 {
		t.Errorf("expected no histories on empty history, got %d", len(histories))
	}
}

func TestRiskLevelScoresAndRanks(t *testing.T) {
	tests := []struct {
		risk  RiskLevel
		score float64
		rank  int
	}{
		{RiskLow, 1.0, 0},
		{RiskMedium, 0.6, 1},
		{RiskHigh, 0.2, 2},
		{RiskLevel("Unknown"), 0.4, 3},
		{RiskLevel(""), 0.4, 3},
	}

	for _, tt := range tests {
		if got := tt.risk.Score(); got != tt.score {
			t.Errorf("Score(%q) = %v, expected %v", tt.risk, got, tt.score)
		}
		if got := tt.risk.Rank(); got != tt.rank {
			t.Errorf("Rank(%q) = %v, expected %v", tt.risk, got, tt.rank)
		}
	}
}

func TestGroupByCategoryPreservesOrder(t *testing.T) {
	rows := []SupplierCategoryMetric{
		{Category: "B", SupplierID: "S1"},
		{Category: "A", SupplierID: "S2"},
		{Category: "B", SupplierID: "S3"},
	}

	categories, groups := GroupByCategory(rows)

	if len(categories) != 2 || categories[0] != "B" || categories[1] != "A" {
		t.Errorf("expected first-seen order [B A], got %v", categories)
	}
	if len(groups["B"]) != 2 || groups["B"][0].SupplierID != "S1" || groups["B"][1].SupplierID != "S3" {
		t.Errorf("expected B group to keep row order, got %+v", groups["B"])
	}
}

func TestHistoryByCategory(t *testing.T) {
	histories := []CategoryHistory{
		{Category: "A", TotalSpend: 1},
		{Category: "B", TotalSpend: 2},
	}
	byCategory := HistoryByCategory(histories)
	if len(byCategory) != 2 || byCategory["B"].TotalSpend != 2 {
		t.Errorf("unexpected index: %+v", byCategory)
	}
}
