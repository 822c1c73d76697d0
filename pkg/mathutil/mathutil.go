// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/lotline/proforma/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// CompoundFactor returns the growth factor for an annual percentage rate
// compounded over the given number of months.
func CompoundFactor(annualPct float64, months float64) float64 {
	if annualPct == 0 || months == 0 {
		return 1.0
	}
	return math.Pow(1.0+annualPct/constants.PercentageMultiplier, months/constants.MonthsPerYear)
}

// MonthlyRate converts an annual percentage rate to a simple per-month rate.
func MonthlyRate(annualPct float64) float64 {
	return annualPct / (constants.PercentageMultiplier * constants.MonthsPerYear)
}
