package debt

import (
	"fmt"
	"math"

	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// CalculateLevelPayment calculates the level payment that amortizes a balance
// over termMonths at the given annual percentage rate.
func CalculateLevelPayment(balance, annualRatePct float64, termMonths int) float64 {
	if termMonths <= 0 {
		return balance
	}
	if annualRatePct == 0 {
		return balance / float64(termMonths)
	}
	rate := mathutil.MonthlyRate(annualRatePct)
	power := math.Pow(1.0+rate, float64(termMonths))
	discountFactor := (power - 1.0) / power
	return balance * rate / discountFactor
}

// BuildTerm produces the schedule for a term loan. The loan amount is drawn
// once at startIdx net of origination fee, interest reserve, and closing
// costs; payments are interest-only for InterestOnlyMonths, then level
// amortizing over AmortizationMonths. A balance remaining at maturity is paid
// as a balloon.
func BuildTerm(logger *zap.Logger, loan Loan, startIdx, periodCount int) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loan.TakesOutLoanID != 0 {
		return nil, fmt.Errorf("loan %s: %w", loan.Name, ErrTakeoutUnsupported)
	}
	if startIdx < 0 || startIdx >= periodCount {
		return nil, fmt.Errorf("loan %s starts at period %d outside horizon %d", loan.Name, startIdx, periodCount)
	}

	sched := &Schedule{LoanID: loan.ID, Name: loan.Name, Structure: StructureTerm}
	sched.init(periodCount)

	termMonths := ResolveTermMonths(loan, periodCount-startIdx)
	amortMonths := loan.AmortizationMonths
	if amortMonths <= 0 {
		amortMonths = termMonths - loan.InterestOnlyMonths
	}

	gross := loan.CommitmentAmount
	sched.OriginationCost = mathutil.ApplyPercentage(gross, loan.OriginationFeePct)
	if loan.NetLoanProceeds > 0 {
		sched.NetProceeds = loan.NetLoanProceeds
	} else {
		sched.NetProceeds = gross - sched.OriginationCost - loan.InterestReserve - loan.ClosingCosts
	}

	rate := mathutil.MonthlyRate(loan.InterestRatePct)
	levelPayment := CalculateLevelPayment(gross, loan.InterestRatePct, amortMonths)

	sched.Draws[startIdx] = sched.NetProceeds
	sched.NetCashFlow[startIdx] += sched.NetProceeds

	balance := gross
	maturityIdx := startIdx + termMonths - 1
	if maturityIdx >= periodCount {
		// Hold-period clipping truncates the loan tail.
		maturityIdx = periodCount - 1
	}

	for p := startIdx; p <= maturityIdx; p++ {
		interest := balance * rate
		var payment, principal float64
		if p-startIdx < loan.InterestOnlyMonths {
			payment = interest
		} else {
			payment = levelPayment
			principal = payment - interest
			if principal > balance {
				principal = balance
				payment = principal + interest
			}
		}
		balance -= principal
		if mathutil.Round(balance) == 0 {
			balance = 0
		}

		if p == maturityIdx && balance > 0 {
			sched.Balloon = balance
			payment += balance
			balance = 0
			logger.Debug(fmt.Sprintf("loan %s matures at period %d with balloon %.2f",
				loan.Name, p+1, sched.Balloon),
				zap.String("op", "debt.BuildTerm"),
			)
		}

		sched.Interest[p] = interest
		sched.Payments[p] = payment
		sched.EndingBalance[p] = balance
		sched.NetCashFlow[p] -= payment
		if balance == 0 && p < maturityIdx {
			break
		}
	}

	return sched, nil
}
