// Package constants provides shared constants for the proforma application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// WeightTolerance is the tolerance for distribution weight sums
	WeightTolerance = 1e-9
)

// S-curve distribution constants
const (
	// CurveDomainHalfWidth bounds the logistic sampling domain at [-6, 6]
	CurveDomainHalfWidth = 6.0

	// DefaultCurveSteepness is the steepness applied when an item omits one
	DefaultCurveSteepness = 1.0
)

// Solver constants
const (
	// ReserveTolerance is the convergence tolerance for interest reserve sizing
	ReserveTolerance = 0.01

	// ReserveMaxIterations caps the interest reserve fixed-point loop
	ReserveMaxIterations = 50

	// IRRTolerance is the convergence tolerance for the IRR solver
	IRRTolerance = 1e-7

	// IRRMaxIterations caps the IRR solver iterations
	IRRMaxIterations = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Data source constants
const (
	// SourceYAML reads the project definition from a YAML file
	SourceYAML = "yaml"

	// SourcePostgres reads the project definition from PostgreSQL
	SourcePostgres = "postgres"

	// DatabaseURLEnv is the environment variable holding the PostgreSQL DSN
	DatabaseURLEnv = "PROFORMA_DATABASE_URL"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default project definition file name
	DefaultConfigFile = "project.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML
	// project definitions (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
