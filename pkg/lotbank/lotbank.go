// Package lotbank produces option-deposit, deposit-credit, management-fee,
// and default-provision schedules for lotbank deal structures.
package lotbank

import (
	"fmt"
	"sort"

	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// Product is the lotbank position in one qualifying division.
type Product struct {
	ProductID      string
	LotCount       int
	RetailLotPrice float64
	DepositPct     float64
	DepositCapPct  float64
	PremiumPct     float64
}

// Terms are the deal-level lotbank parameters.
type Terms struct {
	ManagementFeePct    float64
	DefaultProvisionPct float64
	UnderwritingFee     float64
}

// Schedule carries the signed per-period lotbank flows: deposits in,
// credits and fees out.
type Schedule struct {
	InitialDeposits   []float64
	DepositCredits    []float64
	ManagementFees    []float64
	DefaultProvisions []float64
	UnderwritingFees  []float64

	LotsRemainingByProduct map[string][]int
	TotalInitialDeposit    float64
}

// Build computes the lotbank schedule for the given products over periodCount
// periods. lotsSoldByProduct is the per-period lot takedown from the
// absorption schedule, keyed by product.
func Build(logger *zap.Logger, products []Product, terms Terms, lotsSoldByProduct []map[string]int, periodCount int) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodCount < 1 {
		return nil, fmt.Errorf("period count must be at least 1, got %d", periodCount)
	}

	sched := &Schedule{
		InitialDeposits:        make([]float64, periodCount),
		DepositCredits:         make([]float64, periodCount),
		ManagementFees:         make([]float64, periodCount),
		DefaultProvisions:      make([]float64, periodCount),
		UnderwritingFees:       make([]float64, periodCount),
		LotsRemainingByProduct: make(map[string][]int),
	}

	ordered := make([]Product, len(products))
	copy(ordered, products)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	for _, product := range ordered {
		if product.LotCount <= 0 || product.RetailLotPrice <= 0 {
			logger.Debug(fmt.Sprintf("lotbank product %s has no lots or price, skipping", product.ProductID),
				zap.String("op", "lotbank.Build"),
			)
			continue
		}

		perUnit := depositPerUnit(product)
		initial := perUnit * float64(product.LotCount)
		sched.InitialDeposits[0] += initial
		sched.TotalInitialDeposit += initial

		remaining := make([]int, periodCount)
		lots := product.LotCount
		for p := 0; p < periodCount; p++ {
			sold := 0
			if p < len(lotsSoldByProduct) {
				sold = lotsSoldByProduct[p][product.ProductID]
			}
			if sold > lots {
				sold = lots
			}
			if sold > 0 {
				// The deposit attached to each lot is credited back when it
				// sells.
				sched.DepositCredits[p] -= perUnit * float64(sold)
				lots -= sold
			}
			remaining[p] = lots

			value := float64(lots) * product.RetailLotPrice
			sched.ManagementFees[p] -= mathutil.ApplyPercentage(value, terms.ManagementFeePct) / constants.MonthsPerYear
			sched.DefaultProvisions[p] -= mathutil.ApplyPercentage(value, terms.DefaultProvisionPct) / constants.MonthsPerYear
		}
		sched.LotsRemainingByProduct[product.ProductID] = remaining
	}

	if terms.UnderwritingFee > 0 {
		sched.UnderwritingFees[0] = -terms.UnderwritingFee
	}

	return sched, nil
}

// depositPerUnit applies the deposit percentage to the retail lot price,
// capped per-unit by the deposit cap percentage when one is set.
func depositPerUnit(product Product) float64 {
	deposit := mathutil.ApplyPercentage(product.RetailLotPrice, product.DepositPct)
	if product.DepositCapPct > 0 {
		cap := mathutil.ApplyPercentage(product.RetailLotPrice, product.DepositCapPct)
		deposit = mathutil.Min(deposit, cap)
	}
	return deposit
}
