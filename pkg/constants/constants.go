// Package constants provides shared constants for procurement-spend-analysis.
package constants

// Numeric constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 kobo)
	CurrencyTolerance = 0.01

	// ShareTolerance is the tolerance for allocation share comparisons
	ShareTolerance = 1e-6

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Supplier optimization defaults
const (
	// DefaultMaxSuppliersPerCategory is the default supplier count retained per category
	DefaultMaxSuppliersPerCategory = 3

	// DefaultMinSupplierShare is the default floor for any recommended share
	DefaultMinSupplierShare = 0.15

	// DualSourcePrimaryShareCap caps the primary supplier's share when dual sourcing
	DualSourcePrimaryShareCap = 0.65
)

// Monte Carlo defaults
const (
	// DefaultNumSimulations is the default Monte Carlo draw count
	DefaultNumSimulations = 10000

	// DefaultRandomSeed is the default Monte Carlo seed
	DefaultRandomSeed = 42

	// SpendFloorFraction is the lower clip on simulated total spend, as a
	// fraction of the base estimate
	SpendFloorFraction = 0.5
)

// Descriptive analysis assumptions
const (
	// LateDeliveryCostRate estimates the extra cost of late deliveries
	// (rush orders, production delays) as a fraction of affected spend
	LateDeliveryCostRate = 0.03

	// ConsolidationSavingsRate estimates savings from consolidating
	// fragmented categories (better pricing, reduced admin)
	ConsolidationSavingsRate = 0.06

	// PriceVarianceMinOverpaymentPct is the minimum overpayment percentage
	// for a material to count as a price standardization opportunity
	PriceVarianceMinOverpaymentPct = 10.0

	// PriceVarianceTopOpportunities limits how many price variance rows are
	// aggregated into the savings lever
	PriceVarianceTopOpportunities = 10

	// PoorPerformerOTDFloorPct flags suppliers delivering on time less often
	PoorPerformerOTDFloorPct = 80.0

	// PoorPerformerIncidentCeiling flags suppliers with more quality incidents
	PoorPerformerIncidentCeiling = 2

	// PoorPerformerMinOrders is the minimum order count before a supplier is
	// judged on performance
	PoorPerformerMinOrders = 5

	// PoorPerformerLimit caps how many underperformers feed the savings lever
	PoorPerformerLimit = 10

	// FragmentationSupplierThreshold is the supplier count above which a
	// category is considered fragmented
	FragmentationSupplierThreshold = 8
)
