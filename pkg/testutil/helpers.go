// Package testutil provides common utility functions for testing.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE suppliers (
    supplier_id   TEXT PRIMARY KEY,
    supplier_name TEXT NOT NULL,
    risk_level    TEXT,
    is_approved   INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE purchase_orders (
    po_number              TEXT PRIMARY KEY,
    supplier_id            TEXT NOT NULL REFERENCES suppliers(supplier_id),
    supplier_name          TEXT NOT NULL,
    category               TEXT NOT NULL,
    material_name          TEXT,
    quantity               REAL NOT NULL,
    unit_price_ngn         REAL NOT NULL,
    total_amount_ngn       REAL NOT NULL,
    total_amount_usd       REAL,
    currency               TEXT NOT NULL DEFAULT 'NGN',
    expected_delivery_date TEXT,
    actual_delivery_date   TEXT
);

CREATE TABLE quality_incidents (
    incident_id     TEXT PRIMARY KEY,
    po_number       TEXT REFERENCES purchase_orders(po_number),
    supplier_id     TEXT REFERENCES suppliers(supplier_id),
    cost_impact_ngn REAL
);
`

// OpenTestDB opens an in-memory database with the procurement schema and
// registers cleanup. The pool is pinned to a single connection so every
// statement sees the same in-memory database.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// MustExec runs a statement and fails the test on error.
func MustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

// InsertSupplier adds a supplier row.
func InsertSupplier(t *testing.T, db *sql.DB, id, name, riskLevel string, approved bool) {
	t.Helper()
	approvedInt := 0
	if approved {
		approvedInt = 1
	}
	MustExec(t, db,
		`INSERT INTO suppliers (supplier_id, supplier_name, risk_level, is_approved) VALUES (?, ?, ?, ?)`,
		id, name, riskLevel, approvedInt)
}

// PurchaseOrder describes one purchase order row for seeding.
type PurchaseOrder struct {
	PONumber             string
	SupplierID           string
	SupplierName         string
	Category             string
	MaterialName         string
	Quantity             float64
	UnitPrice            float64
	TotalAmountUSD       float64
	Currency             string
	ExpectedDeliveryDate string
	ActualDeliveryDate   string
}

// InsertPurchaseOrder adds a purchase order row. The total amount is derived
// from quantity and unit price; empty date strings insert as NULL.
func InsertPurchaseOrder(t *testing.T, db *sql.DB, po PurchaseOrder) {
	t.Helper()
	if po.Currency == "" {
		po.Currency = "NGN"
	}
	MustExec(t, db,
		`INSERT INTO purchase_orders
		 (po_number, supplier_id, supplier_name, category, material_name, quantity,
		  unit_price_ngn, total_amount_ngn, total_amount_usd, currency,
		  expected_delivery_date, actual_delivery_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		po.PONumber, po.SupplierID, po.SupplierName, po.Category, po.MaterialName,
		po.Quantity, po.UnitPrice, po.Quantity*po.UnitPrice,
		nullFloat(po.TotalAmountUSD), po.Currency,
		nullString(po.ExpectedDeliveryDate), nullString(po.ActualDeliveryDate))
}

// InsertQualityIncident adds a quality incident row.
func InsertQualityIncident(t *testing.T, db *sql.DB, incidentID, poNumber, supplierID string, costImpact float64) {
	t.Helper()
	MustExec(t, db,
		`INSERT INTO quality_incidents (incident_id, po_number, supplier_id, cost_impact_ngn) VALUES (?, ?, ?, ?)`,
		incidentID, poNumber, supplierID, costImpact)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
