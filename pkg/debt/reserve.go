package debt

import (
	"fmt"

	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// ReserveSolution reports the outcome of interest reserve sizing.
type ReserveSolution struct {
	Reserve    float64
	Iterations int
	Converged  bool
}

// SolveInterestReserve sizes a revolver's interest reserve so that it covers
// the interest the loan accrues, using fixed-point iteration: each pass builds
// the schedule with the candidate reserve and feeds the total accrued interest
// back as the next candidate. Iteration stops when successive candidates agree
// within ReserveTolerance or after ReserveMaxIterations passes.
func SolveInterestReserve(logger *zap.Logger, loan Loan, ctx PeriodContext, startIdx, periodCount int) (*ReserveSolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reserve := 0.0
	for i := 1; i <= constants.ReserveMaxIterations; i++ {
		loan.InterestReserve = reserve
		sched, err := BuildRevolver(logger, loan, ctx, startIdx, periodCount)
		if err != nil {
			return nil, err
		}

		total := 0.0
		for _, interest := range sched.Interest {
			total += interest
		}

		if mathutil.WithinTolerance(total, reserve, constants.ReserveTolerance) {
			logger.Debug(fmt.Sprintf("interest reserve for %s converged to %.2f after %d iterations",
				loan.Name, total, i),
				zap.String("op", "debt.SolveInterestReserve"),
			)
			return &ReserveSolution{Reserve: total, Iterations: i, Converged: true}, nil
		}
		reserve = total
	}

	logger.Warn(fmt.Sprintf("interest reserve for %s did not converge, using %.2f", loan.Name, reserve),
		zap.String("op", "debt.SolveInterestReserve"),
	)
	return &ReserveSolution{Reserve: reserve, Iterations: constants.ReserveMaxIterations, Converged: false}, nil
}
