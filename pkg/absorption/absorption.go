// Package absorption converts parcel-level sale records into period-bucketed
// revenue with price escalation and itemized transaction deductions.
package absorption

import (
	"fmt"

	"github.com/lotline/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// ParcelSale is one parcel or lot group scheduled to close in a period.
type ParcelSale struct {
	ParcelID    int
	Description string
	ContainerID int
	ProductType string
	SalePeriod  int // 1-based; 0 means unscheduled
	Units       int
	Acreage     float64

	GrossRevenue     float64
	NetRevenue       float64
	Commissions      float64
	ClosingCosts     float64
	SubdivisionCosts float64
}

// PeriodSales aggregates all parcels closing in one period.
type PeriodSales struct {
	GrossRevenue     float64
	NetRevenue       float64
	Commissions      float64
	ClosingCosts     float64
	SubdivisionCosts float64
	Units            int

	UnitsByProduct   map[string]int
	GrossByContainer map[int]float64
	NetByContainer   map[int]float64
}

// Schedule is the full absorption schedule for a projection run.
type Schedule struct {
	PeriodSales []PeriodSales

	TotalGrossRevenue     float64
	TotalNetRevenue       float64
	TotalCommissions      float64
	TotalClosingCosts     float64
	TotalSubdivisionCosts float64
	TotalUnits            int
}

// Build groups sale records by sale period over periodCount periods.
// priceGrowthPct is an annual percentage; escalation multiplies gross revenue,
// net revenue, commissions, and closing costs by (1+g)^((p-1)/12).
// Subdivision costs are cost-based and are never escalated. Records lacking a
// sale period, or with zero units and zero acreage, are excluded.
func Build(logger *zap.Logger, sales []ParcelSale, periodCount int, priceGrowthPct float64) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodCount < 1 {
		return nil, fmt.Errorf("period count must be at least 1, got %d", periodCount)
	}

	sched := &Schedule{PeriodSales: make([]PeriodSales, periodCount)}
	for i := range sched.PeriodSales {
		sched.PeriodSales[i].UnitsByProduct = make(map[string]int)
		sched.PeriodSales[i].GrossByContainer = make(map[int]float64)
		sched.PeriodSales[i].NetByContainer = make(map[int]float64)
	}

	for _, sale := range sales {
		if sale.SalePeriod <= 0 {
			logger.Debug(fmt.Sprintf("parcel %s has no sale period, excluding", sale.Description),
				zap.String("op", "absorption.Build"),
			)
			continue
		}
		if sale.Units == 0 && sale.Acreage == 0 {
			logger.Debug(fmt.Sprintf("parcel %s has no units or acreage, excluding", sale.Description),
				zap.String("op", "absorption.Build"),
			)
			continue
		}
		idx := sale.SalePeriod - 1
		if idx >= periodCount {
			logger.Debug(fmt.Sprintf("parcel %s sells in period %d beyond the horizon, excluding",
				sale.Description, sale.SalePeriod),
				zap.String("op", "absorption.Build"),
			)
			continue
		}

		factor := 1.0
		if priceGrowthPct != 0 {
			factor = mathutil.CompoundFactor(priceGrowthPct, float64(sale.SalePeriod-1))
		}

		gross := sale.GrossRevenue * factor
		net := sale.NetRevenue * factor
		commissions := sale.Commissions * factor
		closing := sale.ClosingCosts * factor

		bucket := &sched.PeriodSales[idx]
		bucket.GrossRevenue += gross
		bucket.NetRevenue += net
		bucket.Commissions += commissions
		bucket.ClosingCosts += closing
		bucket.SubdivisionCosts += sale.SubdivisionCosts
		bucket.Units += sale.Units
		if sale.ProductType != "" {
			bucket.UnitsByProduct[sale.ProductType] += sale.Units
		}
		bucket.GrossByContainer[sale.ContainerID] += gross
		bucket.NetByContainer[sale.ContainerID] += net

		sched.TotalGrossRevenue += gross
		sched.TotalNetRevenue += net
		sched.TotalCommissions += commissions
		sched.TotalClosingCosts += closing
		sched.TotalSubdivisionCosts += sale.SubdivisionCosts
		sched.TotalUnits += sale.Units
	}

	return sched, nil
}

// ContainerIDs returns every container that contributed revenue, in no
// particular order.
func (s *Schedule) ContainerIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for i := range s.PeriodSales {
		for id := range s.PeriodSales[i].GrossByContainer {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// UnitsSoldByProduct returns the per-period lots sold keyed by product type.
func (s *Schedule) UnitsSoldByProduct() []map[string]int {
	out := make([]map[string]int, len(s.PeriodSales))
	for i := range s.PeriodSales {
		out[i] = s.PeriodSales[i].UnitsByProduct
	}
	return out
}

// AveragePriceByProduct returns the average gross revenue per unit for each
// product type across the whole schedule.
func (s *Schedule) AveragePriceByProduct() map[string]float64 {
	gross := make(map[string]float64)
	units := make(map[string]int)
	for i := range s.PeriodSales {
		bucket := &s.PeriodSales[i]
		if bucket.Units == 0 {
			continue
		}
		// Apportion the period's gross revenue across products by unit share.
		perUnit := bucket.GrossRevenue / float64(bucket.Units)
		for product, n := range bucket.UnitsByProduct {
			gross[product] += perUnit * float64(n)
			units[product] += n
		}
	}
	out := make(map[string]float64)
	for product, total := range gross {
		if units[product] > 0 {
			out[product] = total / float64(units[product])
		}
	}
	return out
}
