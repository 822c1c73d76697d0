package costs

import (
	"math"

	"github.com/lotline/proforma/pkg/constants"
)

// CurveWeights returns n incremental apportionment weights derived from a
// logistic S-curve. The curve is sampled at n+1 points mapped onto
// [-6, 6], scaled by twice the steepness; each weight is the discrete
// derivative between adjacent samples. Weights are renormalized to sum to
// exactly 1 so the distributed total always equals the item amount.
func CurveWeights(n int, steepness float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1.0}
	}
	if steepness <= 0 {
		steepness = constants.DefaultCurveSteepness
	}
	k := 2.0 * steepness

	samples := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		x := -constants.CurveDomainHalfWidth +
			2.0*constants.CurveDomainHalfWidth*float64(i)/float64(n)
		samples[i] = logistic(k * x)
	}

	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		weights[i] = samples[i+1] - samples[i]
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
