// Package metrics derives investment metrics from cash-flow series: IRR, NPV,
// equity multiple, peak equity, and payback period.
package metrics

import (
	"math"

	"github.com/lotline/proforma/pkg/constants"
)

// Cumulative returns the running cumulative sum of flows.
func Cumulative(flows []float64) []float64 {
	out := make([]float64, len(flows))
	running := 0.0
	for i, f := range flows {
		running += f
		out[i] = running
	}
	return out
}

// IRR computes the internal rate of return of a periodic cash-flow series
// using Newton iteration with a bisection fallback. It returns nil when the
// series has fewer than two values, lacks both an inflow and an outflow, or
// the solver does not converge.
func IRR(flows []float64) *float64 {
	if len(flows) < 2 {
		return nil
	}
	hasPositive, hasNegative := false, false
	for _, f := range flows {
		if f > 0 {
			hasPositive = true
		}
		if f < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return nil
	}

	rate := 0.1
	for i := 0; i < constants.IRRMaxIterations; i++ {
		value, derivative := npvAndDerivative(flows, rate)
		if math.Abs(value) < constants.IRRTolerance {
			return &rate
		}
		if derivative == 0 {
			break
		}
		next := rate - value/derivative
		if next <= -1 {
			// Keep the candidate in the domain of (1+r)^n.
			next = (rate - 1) / 2
		}
		if math.Abs(next-rate) < constants.IRRTolerance {
			rate = next
			return &rate
		}
		rate = next
	}

	return irrBisect(flows)
}

// irrBisect brackets the IRR on (-1, 10] and bisects. Returns nil when no
// sign change exists in the bracket.
func irrBisect(flows []float64) *float64 {
	lo, hi := -0.9999, 10.0
	fLo, _ := npvAndDerivative(flows, lo)
	fHi, _ := npvAndDerivative(flows, hi)
	if fLo*fHi > 0 {
		return nil
	}
	for i := 0; i < constants.IRRMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid, _ := npvAndDerivative(flows, mid)
		if math.Abs(fMid) < constants.IRRTolerance || hi-lo < constants.IRRTolerance {
			return &mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	mid := (lo + hi) / 2
	return &mid
}

func npvAndDerivative(flows []float64, rate float64) (float64, float64) {
	value, derivative := 0.0, 0.0
	for i, f := range flows {
		discount := math.Pow(1+rate, float64(i))
		value += f / discount
		if i > 0 {
			derivative -= float64(i) * f / (discount * (1 + rate))
		}
	}
	return value, derivative
}

// NPV discounts a monthly cash-flow series at the monthly equivalent of the
// given annual percentage rate: (1+r)^(1/12) - 1. The first flow is not
// discounted.
func NPV(flows []float64, annualRatePct float64) float64 {
	monthlyRate := math.Pow(1+annualRatePct/constants.PercentageMultiplier, 1.0/constants.MonthsPerYear) - 1
	value := 0.0
	for i, f := range flows {
		value += f / math.Pow(1+monthlyRate, float64(i))
	}
	return value
}

// EquityMultiple returns total inflows divided by the absolute value of total
// outflows, or nil when there are no outflows.
func EquityMultiple(flows []float64) *float64 {
	inflows, outflows := 0.0, 0.0
	for _, f := range flows {
		if f > 0 {
			inflows += f
		} else {
			outflows += -f
		}
	}
	if outflows == 0 {
		return nil
	}
	multiple := inflows / outflows
	return &multiple
}

// PeakEquity returns the most negative value of the running cumulative cash
// flow, or 0 when the cumulative position never goes negative.
func PeakEquity(cumulative []float64) float64 {
	peak := 0.0
	for _, c := range cumulative {
		if c < peak {
			peak = c
		}
	}
	return peak
}

// PaybackPeriod returns the first period index at which the cumulative cash
// flow becomes non-negative, or nil when it never does.
func PaybackPeriod(cumulative []float64) *int {
	for i, c := range cumulative {
		if c >= 0 {
			idx := i
			return &idx
		}
	}
	return nil
}
