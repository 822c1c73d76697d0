package debt

import (
	"fmt"
	"sort"

	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// BuildRevolver produces the schedule for a revolving construction loan.
// Draws track the per-period costs in ctx (or the full commitment upfront,
// depending on the trigger type), interest accrues monthly on the outstanding
// balance, an interest reserve funds interest while it lasts, and release
// payments tied to lot sales pay the balance down.
func BuildRevolver(logger *zap.Logger, loan Loan, ctx PeriodContext, startIdx, periodCount int) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loan.TakesOutLoanID != 0 {
		return nil, fmt.Errorf("loan %s: %w", loan.Name, ErrTakeoutUnsupported)
	}
	if startIdx < 0 || startIdx >= periodCount {
		return nil, fmt.Errorf("loan %s starts at period %d outside horizon %d", loan.Name, startIdx, periodCount)
	}
	if len(ctx.TotalCosts) < periodCount {
		return nil, fmt.Errorf("loan %s: period context covers %d of %d periods", loan.Name, len(ctx.TotalCosts), periodCount)
	}

	sched := &Schedule{LoanID: loan.ID, Name: loan.Name, Structure: StructureRevolver}
	sched.init(periodCount)
	sched.OriginationCost = mathutil.ApplyPercentage(loan.CommitmentAmount, loan.OriginationFeePct)

	acceleration := loan.RepaymentAcceleration
	if acceleration <= 0 {
		acceleration = 1.0
	}
	rate := mathutil.MonthlyRate(loan.InterestRatePct)

	balance := 0.0
	drawn := 0.0
	reserveRemaining := loan.InterestReserve
	originationPending := sched.OriginationCost > 0

	maturityIdx := startIdx + ResolveTermMonths(loan, periodCount-startIdx) - 1
	if maturityIdx >= periodCount {
		maturityIdx = periodCount - 1
	}

	for p := startIdx; p <= maturityIdx; p++ {
		var draw float64
		switch loan.DrawTriggerType {
		case TriggerUpfront:
			if p == startIdx {
				draw = loan.CommitmentAmount
			}
		default: // TriggerCostsIncurred
			draw = ctx.TotalCosts[p]
		}
		if loan.CommitmentAmount > 0 && drawn+draw > loan.CommitmentAmount {
			draw = loan.CommitmentAmount - drawn
			if draw < 0 {
				draw = 0
			}
		}
		drawn += draw
		balance += draw

		// Funds are drawn at the start of the period, so interest accrues on
		// the post-draw balance.
		interest := balance * rate

		reserveDraw := 0.0
		if reserveRemaining > 0 && interest > 0 {
			reserveDraw = mathutil.Min(interest, reserveRemaining)
			reserveRemaining -= reserveDraw
			balance += reserveDraw
		}

		release := releasePayment(loan, ctx, p, acceleration)
		if release > balance {
			release = balance
		}
		balance -= release

		origination := 0.0
		if originationPending && (draw > 0 || p == maturityIdx) {
			origination = sched.OriginationCost
			originationPending = false
		}

		sched.Draws[p] = draw
		sched.Interest[p] = interest
		sched.ReserveDraws[p] = reserveDraw
		sched.ReleasePayments[p] = release
		sched.EndingBalance[p] = balance
		sched.NetCashFlow[p] = draw - interest + reserveDraw - release - origination
	}

	if balance > 0 {
		logger.Debug(fmt.Sprintf("revolver %s carries %.2f past its maturity at period %d",
			loan.Name, balance, maturityIdx+1),
			zap.String("op", "debt.BuildRevolver"),
		)
	}

	return sched, nil
}

// releasePayment computes the repayment owed for the lots sold in a period:
// the greater of the release percentage of each lot's price and the minimum
// release price, per lot, scaled by the acceleration factor.
func releasePayment(loan Loan, ctx PeriodContext, p int, acceleration float64) float64 {
	if p >= len(ctx.LotsSoldByProduct) || len(ctx.LotsSoldByProduct[p]) == 0 {
		return 0
	}
	products := make([]string, 0, len(ctx.LotsSoldByProduct[p]))
	for product := range ctx.LotsSoldByProduct[p] {
		products = append(products, product)
	}
	sort.Strings(products)

	total := 0.0
	for _, product := range products {
		lots := ctx.LotsSoldByProduct[p][product]
		if lots <= 0 {
			continue
		}
		perLot := mathutil.ApplyPercentage(ctx.CostPerLotByProduct[product], loan.ReleasePricePct)
		perLot = mathutil.Max(perLot, loan.MinimumReleasePrice)
		total += perLot * float64(lots)
	}
	return total * acceleration
}
