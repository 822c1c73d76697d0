// Package debt produces period-by-period draw, interest, and repayment
// schedules for revolving and term loans.
package debt

import (
	"errors"
	"time"
)

// Structure types for loans.
const (
	StructureTerm     = "TERM"
	StructureRevolver = "REVOLVER"
)

// Draw trigger types for revolvers.
const (
	// TriggerCostsIncurred draws funds to cover each period's incurred costs.
	TriggerCostsIncurred = "COSTS_INCURRED"

	// TriggerUpfront draws the full commitment at the loan start period.
	TriggerUpfront = "UPFRONT"
)

// ErrTakeoutUnsupported is returned for loans that declare a takeout
// (refinance) linkage to another loan. Refinancing chains are not
// implemented and fail loudly rather than silently ignoring the linkage.
var ErrTakeoutUnsupported = errors.New("loan takeout chaining is not supported")

// Loan is one loan master record.
type Loan struct {
	ID          int
	Name        string
	ContainerID int
	Structure   string

	// CommitmentAmount is the commitment for revolvers and the loan amount
	// for term loans.
	CommitmentAmount float64
	InterestRatePct  float64
	StartDate        time.Time

	TermMonths         int // takes precedence over TermYears
	TermYears          int
	InterestOnlyMonths int
	AmortizationMonths int

	OriginationFeePct float64
	ClosingCosts      float64
	InterestReserve   float64
	// NetLoanProceeds overrides the computed net proceeds when positive.
	NetLoanProceeds float64

	DrawTriggerType       string
	ReleasePricePct       float64
	MinimumReleasePrice   float64
	RepaymentAcceleration float64

	// TakesOutLoanID references a loan this one refinances. Non-zero values
	// are rejected with ErrTakeoutUnsupported.
	TakesOutLoanID int
}

// PeriodContext carries the per-period cost and lot-sale aggregates a loan
// schedule is computed against. Built fresh per projection run.
type PeriodContext struct {
	TotalCosts          []float64
	LotsSoldByProduct   []map[string]int
	CostPerLotByProduct map[string]float64
}

// Schedule is the period-by-period cash effect of one loan.
type Schedule struct {
	LoanID    int
	Name      string
	Structure string

	Draws           []float64
	Interest        []float64
	ReserveDraws    []float64
	ReleasePayments []float64
	Payments        []float64
	EndingBalance   []float64

	OriginationCost float64
	NetProceeds     float64
	Balloon         float64

	// NetCashFlow is the signed per-period effect to the project: draws and
	// proceeds positive, interest and repayments negative.
	NetCashFlow []float64
}

// ResolveTermMonths resolves a loan's term in months. Months take precedence
// over years; a missing term defaults to the full projection horizon.
func ResolveTermMonths(loan Loan, horizon int) int {
	if loan.TermMonths > 0 {
		return loan.TermMonths
	}
	if loan.TermYears > 0 {
		return loan.TermYears * 12
	}
	return horizon
}

func (s *Schedule) init(count int) {
	s.Draws = make([]float64, count)
	s.Interest = make([]float64, count)
	s.ReserveDraws = make([]float64, count)
	s.ReleasePayments = make([]float64, count)
	s.Payments = make([]float64, count)
	s.EndingBalance = make([]float64, count)
	s.NetCashFlow = make([]float64, count)
}
