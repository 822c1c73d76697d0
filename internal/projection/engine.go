// Package projection orchestrates the financial projection engine: period
// resolution, cost and revenue scheduling, debt service, lotbank economics,
// section assembly, and summary metrics.
package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/datetime"
	"github.com/lotline/proforma/pkg/debt"
	"github.com/lotline/proforma/pkg/lotbank"
	"github.com/lotline/proforma/pkg/metrics"
	"github.com/lotline/proforma/pkg/periods"
	"go.uber.org/zap"
)

// Request describes one projection run.
type Request struct {
	ProjectID        int
	ContainerIDs     []int
	IncludeFinancing bool

	// DiscountRateOverride replaces the project's discount rate when non-nil.
	DiscountRateOverride *float64
}

// SummaryMetrics are the aggregate scalars of a projection. Metrics that are
// mathematically undefined for the input series are nil.
type SummaryMetrics struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCosts   float64 `json:"totalCosts"`
	NetProfit    float64 `json:"netProfit"`

	IRR            *float64  `json:"irr"`
	NPV            float64   `json:"npv"`
	EquityMultiple *float64  `json:"equityMultiple"`
	PeakEquity     float64   `json:"peakEquity"`
	PaybackPeriod  *int      `json:"paybackPeriod"`
	CumulativeCash []float64 `json:"cumulativeCashFlow"`
}

// Projection is the full output of one run.
type Projection struct {
	RunID        string           `json:"runId"`
	ProjectID    int              `json:"projectId"`
	ProjectName  string           `json:"projectName"`
	PeriodType   string           `json:"periodType"`
	StartDate    time.Time        `json:"startDate"`
	EndDate      time.Time        `json:"endDate"`
	TotalPeriods int              `json:"totalPeriods"`
	DiscountRate float64          `json:"discountRate"`
	Periods      []periods.Period `json:"periods"`
	Sections     []Section        `json:"sections"`
	Summary      SummaryMetrics   `json:"summary"`
}

// Engine runs projections against a set of read-only providers. Each run is a
// pure synchronous computation; the engine holds no mutable state.
type Engine struct {
	logger    *zap.Logger
	providers Providers
}

// NewEngine constructs an Engine over the given providers.
func NewEngine(logger *zap.Logger, providers Providers) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, providers: providers}
}

// Project computes the monthly cash-flow projection for one project.
func (e *Engine) Project(ctx context.Context, req Request) (*Projection, error) {
	assumptions, err := e.providers.Assumptions.Assumptions(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	items, err := e.providers.Budgets.BudgetItems(ctx, req.ProjectID, req.ContainerIDs)
	if err != nil {
		return nil, fmt.Errorf("loading budget items: %w", err)
	}
	sales, err := e.providers.Sales.ParcelSales(ctx, req.ProjectID, req.ContainerIDs)
	if err != nil {
		return nil, fmt.Errorf("loading parcel sales: %w", err)
	}
	divisions, err := e.providers.Divisions.Divisions(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading divisions: %w", err)
	}

	var loans []debt.Loan
	if req.IncludeFinancing {
		loans, err = e.providers.Loans.Loans(ctx, req.ProjectID, req.ContainerIDs)
		if err != nil {
			return nil, fmt.Errorf("loading loans: %w", err)
		}
	}

	periodCount := resolvePeriodCount(assumptions, items, sales, loans)
	pds := periods.Generate(assumptions.StartDate, periodCount)
	e.logger.Debug(fmt.Sprintf("projecting %s over %d periods", assumptions.Name, periodCount),
		zap.String("op", "projection.Project"),
	)

	acquisition := buildAcquisition(assumptions, divisions, req.ContainerIDs)
	costSchedule, err := costs.Build(e.logger, items, acquisition, periodCount, assumptions.CostInflationPct)
	if err != nil {
		return nil, err
	}

	salesSchedule, err := absorption.Build(e.logger, sales, periodCount, assumptions.PriceGrowthPct)
	if err != nil {
		return nil, err
	}

	var loanSchedules []*debt.Schedule
	if req.IncludeFinancing {
		periodContext := debt.PeriodContext{
			TotalCosts:          costSchedule.PeriodTotals,
			LotsSoldByProduct:   salesSchedule.UnitsSoldByProduct(),
			CostPerLotByProduct: salesSchedule.AveragePriceByProduct(),
		}
		for _, loan := range loans {
			sched, err := e.buildLoanSchedule(loan, periodContext, assumptions.StartDate, periodCount)
			if err != nil {
				return nil, err
			}
			loanSchedules = append(loanSchedules, sched)
		}
	}

	lotbankSchedule, err := e.buildLotbank(assumptions, divisions, salesSchedule, periodCount)
	if err != nil {
		return nil, err
	}

	containerNames := make(map[int]string)
	for _, division := range divisions {
		containerNames[division.ID] = division.Name
	}

	sections := assembleSections(costSchedule, salesSchedule, loanSchedules, lotbankSchedule, containerNames, periodCount)

	discountRate := assumptions.DiscountRatePct
	if req.DiscountRateOverride != nil {
		discountRate = *req.DiscountRateOverride
	}

	flows := netCashFlows(sections, periodCount)
	cumulative := metrics.Cumulative(flows)
	annual := periods.YearBuckets(flows, pds)

	summary := SummaryMetrics{
		TotalRevenue:   salesSchedule.TotalNetRevenue,
		TotalCosts:     costSchedule.TotalCosts,
		NPV:            metrics.NPV(flows, discountRate),
		EquityMultiple: metrics.EquityMultiple(flows),
		PeakEquity:     metrics.PeakEquity(cumulative),
		PaybackPeriod:  metrics.PaybackPeriod(cumulative),
		CumulativeCash: cumulative,
	}
	if lotbankSchedule != nil {
		summary.TotalRevenue += lotbankSchedule.TotalInitialDeposit
	}
	for _, f := range flows {
		summary.NetProfit += f
	}
	if len(annual) >= 2 {
		summary.IRR = metrics.IRR(annual)
	}

	return &Projection{
		RunID:        uuid.NewString(),
		ProjectID:    assumptions.ProjectID,
		ProjectName:  assumptions.Name,
		PeriodType:   "month",
		StartDate:    pds[0].StartDate,
		EndDate:      pds[len(pds)-1].EndDate,
		TotalPeriods: periodCount,
		DiscountRate: discountRate,
		Periods:      pds,
		Sections:     sections,
		Summary:      summary,
	}, nil
}

// buildLoanSchedule dispatches one loan record to the matching sub-engine.
func (e *Engine) buildLoanSchedule(loan debt.Loan, periodContext debt.PeriodContext, projectStart time.Time, periodCount int) (*debt.Schedule, error) {
	if loan.TakesOutLoanID != 0 {
		return nil, fmt.Errorf("loan %s declares a takeout of loan %d: %w",
			loan.Name, loan.TakesOutLoanID, ErrUnsupportedConfiguration)
	}

	startIdx := loanStartIndex(projectStart, loan.StartDate)
	if startIdx >= periodCount {
		startIdx = periodCount - 1
	}

	switch loan.Structure {
	case debt.StructureRevolver:
		return debt.BuildRevolver(e.logger, loan, periodContext, startIdx, periodCount)
	case debt.StructureTerm:
		return debt.BuildTerm(e.logger, loan, startIdx, periodCount)
	default:
		return nil, fmt.Errorf("loan %s has structure %q: %w",
			loan.Name, loan.Structure, ErrUnsupportedConfiguration)
	}
}

// buildLotbank assembles lotbank products from the qualifying divisions and
// runs the lotbank sub-engine. It returns nil without error for non-lotbank
// deals.
func (e *Engine) buildLotbank(assumptions *Assumptions, divisions []Division, salesSchedule *absorption.Schedule, periodCount int) (*lotbank.Schedule, error) {
	switch assumptions.AnalysisType {
	case AnalysisLotbank:
	case AnalysisStandard, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("analysis type %q: %w", assumptions.AnalysisType, ErrInvalidAnalysisType)
	}

	prices := salesSchedule.AveragePriceByProduct()
	unitsByProduct := make(map[string]int)
	for _, periodUnits := range salesSchedule.UnitsSoldByProduct() {
		for product, n := range periodUnits {
			unitsByProduct[product] += n
		}
	}

	var products []lotbank.Product
	for _, division := range divisions {
		if !division.HasLotbankPricing() {
			continue
		}
		product := lotbank.Product{
			ProductID:      division.Name,
			LotCount:       unitsByProduct[division.Name],
			RetailLotPrice: prices[division.Name],
			DepositPct:     *division.LotbankDepositPct,
		}
		if division.LotbankDepositCapPct != nil {
			product.DepositCapPct = *division.LotbankDepositCapPct
		}
		if division.LotbankPremiumPct != nil {
			product.PremiumPct = *division.LotbankPremiumPct
		}
		products = append(products, product)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("lotbank analysis with no division exposing lotbank pricing: %w", ErrInvalidAnalysisType)
	}

	terms := lotbank.Terms{
		ManagementFeePct:    assumptions.Lotbank.ManagementFeePct,
		DefaultProvisionPct: assumptions.Lotbank.DefaultProvisionPct,
		UnderwritingFee:     assumptions.Lotbank.UnderwritingFee,
	}
	return lotbank.Build(e.logger, products, terms, salesSchedule.UnitsSoldByProduct(), periodCount)
}

// buildAcquisition prepares the one-time land purchase cost, pro-rated by
// acreage when a container filter restricts the run to part of the project.
func buildAcquisition(assumptions *Assumptions, divisions []Division, containerIDs []int) *costs.Acquisition {
	if assumptions.AcquisitionCost == 0 {
		return nil
	}
	acq := &costs.Acquisition{Amount: assumptions.AcquisitionCost}
	if len(containerIDs) > 0 {
		included := 0.0
		for _, division := range divisions {
			for _, id := range containerIDs {
				if division.ID == id {
					included += division.Acreage
				}
			}
		}
		acq.TotalAcreage = assumptions.TotalAcreage
		acq.IncludedAcreage = included
	}
	return acq
}

// resolvePeriodCount takes the maximum of the latest budget end period, the
// latest sale period, and each loan's start plus term, then clips to the hold
// period. Clipping is applied after loan-driven extension so a short hold
// period truncates a loan's tail.
func resolvePeriodCount(assumptions *Assumptions, items []costs.BudgetItem, sales []absorption.ParcelSale, loans []debt.Loan) int {
	count := 1
	for _, item := range items {
		duration := item.PeriodsToComplete
		if duration <= 0 {
			duration = 1
		}
		if end := item.StartPeriod + duration - 1; end > count {
			count = end
		}
	}
	for _, sale := range sales {
		if sale.SalePeriod > count {
			count = sale.SalePeriod
		}
	}
	for _, loan := range loans {
		start := loanStartIndex(assumptions.StartDate, loan.StartDate) + 1
		if end := start + debt.ResolveTermMonths(loan, count) - 1; end > count {
			count = end
		}
	}
	if assumptions.HoldPeriodMonths > 0 && count > assumptions.HoldPeriodMonths {
		count = assumptions.HoldPeriodMonths
	}
	if count < 1 {
		count = 1
	}
	return count
}

// loanStartIndex returns the 0-based index of the first period whose end date
// is on or after the loan's declared start date.
func loanStartIndex(projectStart, loanStart time.Time) int {
	if loanStart.IsZero() {
		return 0
	}
	idx := datetime.MonthsBetween(projectStart, loanStart)
	if idx < 0 {
		return 0
	}
	return idx
}
