// Package costs distributes budget line items and one-time acquisition costs
// across calculation periods, applying timing methods and inflation.
package costs

import (
	"fmt"
	"sort"

	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// Timing methods for budget item distribution.
const (
	TimingLump        = "lump"
	TimingDistributed = "distributed"
	TimingCurve       = "curve"
)

// AcquisitionCategory is the synthetic category for land purchase costs.
const AcquisitionCategory = "Land Acquisition"

// BudgetItem is one funded cost activity.
type BudgetItem struct {
	Description       string
	Category          string
	ContainerID       int
	Amount            float64
	StartPeriod       int // 1-based
	PeriodsToComplete int
	TimingMethod      string
	CurveSteepness    float64
	// EscalationRate is an annual percentage overriding the portfolio
	// inflation rate when non-nil.
	EscalationRate *float64
}

// Acquisition is the one-time land purchase cost, placed in the first period.
// When IncludedAcreage is positive the amount is pro-rated by its share of
// TotalAcreage.
type Acquisition struct {
	Amount          float64
	TotalAcreage    float64
	IncludedAcreage float64
}

// ItemSchedule is the distributed form of a single budget item.
type ItemSchedule struct {
	Description   string
	ContainerID   int
	PeriodAmounts []float64
	Total         float64
}

// CategorySummary aggregates the items in one cost category.
type CategorySummary struct {
	Total         float64
	PeriodAmounts []float64
	Items         []ItemSchedule
}

// Schedule is the full cost distribution for a projection run.
type Schedule struct {
	Categories   map[string]*CategorySummary
	PeriodTotals []float64
	TotalCosts   float64
}

// CategoryNames returns the category keys in deterministic order.
func (s *Schedule) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build distributes every budget item plus the optional acquisition cost
// across periodCount periods. inflationPct is the portfolio-wide annual cost
// inflation percentage applied to items without their own escalation rate.
// Items extending past the horizon are truncated and their overflow dropped.
func Build(logger *zap.Logger, items []BudgetItem, acq *Acquisition, periodCount int, inflationPct float64) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodCount < 1 {
		return nil, fmt.Errorf("period count must be at least 1, got %d", periodCount)
	}

	sched := &Schedule{
		Categories:   make(map[string]*CategorySummary),
		PeriodTotals: make([]float64, periodCount),
	}

	for _, item := range items {
		placed, err := distribute(item, periodCount, inflationPct)
		if err != nil {
			return nil, fmt.Errorf("budget item %q: %w", item.Description, err)
		}
		if placed == nil {
			logger.Debug(fmt.Sprintf("budget item %s starts past the projection horizon, skipping", item.Description),
				zap.String("op", "costs.Build"),
			)
			continue
		}
		sched.add(item.Category, ItemSchedule{
			Description:   item.Description,
			ContainerID:   item.ContainerID,
			PeriodAmounts: placed,
			Total:         sum(placed),
		})
	}

	if acq != nil && acq.Amount != 0 {
		amount := acq.Amount
		if acq.IncludedAcreage > 0 && acq.TotalAcreage > 0 {
			amount = acq.Amount * acq.IncludedAcreage / acq.TotalAcreage
			logger.Debug(fmt.Sprintf("pro-rating acquisition cost to %.2f for %.2f of %.2f acres",
				amount, acq.IncludedAcreage, acq.TotalAcreage),
				zap.String("op", "costs.Build"),
			)
		}
		placed := make([]float64, periodCount)
		placed[0] = amount
		sched.add(AcquisitionCategory, ItemSchedule{
			Description:   AcquisitionCategory,
			PeriodAmounts: placed,
			Total:         amount,
		})
	}

	return sched, nil
}

func (s *Schedule) add(category string, item ItemSchedule) {
	summary, ok := s.Categories[category]
	if !ok {
		summary = &CategorySummary{PeriodAmounts: make([]float64, len(s.PeriodTotals))}
		s.Categories[category] = summary
	}
	summary.Items = append(summary.Items, item)
	summary.Total += item.Total
	for i, amount := range item.PeriodAmounts {
		summary.PeriodAmounts[i] += amount
		s.PeriodTotals[i] += amount
	}
	s.TotalCosts += item.Total
}

// distribute places one item's amount into a per-period slice. A nil result
// means the item starts beyond the horizon.
func distribute(item BudgetItem, periodCount int, inflationPct float64) ([]float64, error) {
	startIdx := item.StartPeriod - 1
	if startIdx < 0 {
		startIdx = 0
	}
	if startIdx >= periodCount {
		return nil, nil
	}

	duration := item.PeriodsToComplete
	if duration <= 0 {
		duration = 1
	}
	effective := duration
	if startIdx+effective > periodCount {
		// Overflow periods are dropped, not redistributed.
		effective = periodCount - startIdx
	}

	rate := inflationPct
	if item.EscalationRate != nil {
		rate = *item.EscalationRate
	}

	placed := make([]float64, periodCount)
	switch {
	case item.TimingMethod == TimingLump || duration == 1:
		placed[startIdx] = escalate(item.Amount, rate, startIdx)
	case item.TimingMethod == TimingDistributed:
		per := item.Amount / float64(duration)
		for i := 0; i < effective; i++ {
			placed[startIdx+i] = escalate(per, rate, startIdx+i)
		}
	case item.TimingMethod == TimingCurve:
		weights := CurveWeights(duration, item.CurveSteepness)
		for i := 0; i < effective; i++ {
			placed[startIdx+i] = escalate(item.Amount*weights[i], rate, startIdx+i)
		}
	default:
		return nil, fmt.Errorf("unknown timing method %q", item.TimingMethod)
	}
	return placed, nil
}

// escalate applies an annual percentage rate compounded by the number of
// months elapsed from the projection start to the placement period.
func escalate(amount, annualPct float64, periodIdx int) float64 {
	if annualPct == 0 {
		return amount
	}
	return amount * mathutil.CompoundFactor(annualPct, float64(periodIdx))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Conserved reports whether the schedule satisfies the conservation
// invariant: the per-period totals sum to the schedule total.
func (s *Schedule) Conserved() bool {
	return mathutil.WithinTolerance(sum(s.PeriodTotals), s.TotalCosts, constants.CurrencyTolerance)
}
