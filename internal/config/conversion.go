package config

import (
	"fmt"
	"time"

	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/debt"
)

// ToAssumptions converts the project block into engine assumptions.
func (c *Configuration) ToAssumptions() (*projection.Assumptions, error) {
	start, err := time.Parse(DateTimeLayout, c.Project.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid project start date %q: %w", c.Project.StartDate, err)
	}
	return &projection.Assumptions{
		ProjectID:        c.Project.ID,
		Name:             c.Project.Name,
		StartDate:        start,
		HoldPeriodMonths: c.Project.HoldPeriodMonths,
		AnalysisType:     c.Project.AnalysisType,
		DiscountRatePct:  c.Project.DiscountRate,
		PriceGrowthPct:   c.Project.PriceGrowthRate,
		CostInflationPct: c.Project.CostInflationRate,
		TotalAcreage:     c.Project.TotalAcreage,
		AcquisitionCost:  c.Project.AcquisitionCost,
		Lotbank: projection.LotbankTerms{
			ManagementFeePct:    c.Project.Lotbank.ManagementFeePct,
			DefaultProvisionPct: c.Project.Lotbank.DefaultProvisionPct,
			UnderwritingFee:     c.Project.Lotbank.UnderwritingFee,
		},
	}, nil
}

// ToBudgetItems converts the budget block to engine budget items.
func (c *Configuration) ToBudgetItems() []costs.BudgetItem {
	items := make([]costs.BudgetItem, 0, len(c.BudgetItems))
	for _, item := range c.BudgetItems {
		items = append(items, costs.BudgetItem{
			Description:       item.Description,
			Category:          item.Category,
			ContainerID:       item.ContainerID,
			Amount:            item.Amount,
			StartPeriod:       item.StartPeriod,
			PeriodsToComplete: item.PeriodsToComplete,
			TimingMethod:      item.TimingMethod,
			CurveSteepness:    item.CurveSteepness,
			EscalationRate:    item.EscalationRate,
		})
	}
	return items
}

// ToParcelSales converts the sales block to engine sale records.
func (c *Configuration) ToParcelSales() []absorption.ParcelSale {
	sales := make([]absorption.ParcelSale, 0, len(c.ParcelSales))
	for _, sale := range c.ParcelSales {
		sales = append(sales, absorption.ParcelSale{
			ParcelID:         sale.ParcelID,
			Description:      sale.Description,
			ContainerID:      sale.ContainerID,
			ProductType:      sale.ProductType,
			SalePeriod:       sale.SalePeriod,
			Units:            sale.Units,
			Acreage:          sale.Acreage,
			GrossRevenue:     sale.GrossRevenue,
			NetRevenue:       sale.NetRevenue,
			Commissions:      sale.Commissions,
			ClosingCosts:     sale.ClosingCosts,
			SubdivisionCosts: sale.SubdivisionCosts,
		})
	}
	return sales
}

// ToLoans converts the loans block to engine loan records.
func (c *Configuration) ToLoans() ([]debt.Loan, error) {
	loans := make([]debt.Loan, 0, len(c.Loans))
	for _, loan := range c.Loans {
		converted := debt.Loan{
			ID:                    loan.ID,
			Name:                  loan.Name,
			ContainerID:           loan.ContainerID,
			Structure:             loan.Structure,
			CommitmentAmount:      loan.CommitmentAmount,
			InterestRatePct:       loan.InterestRate,
			TermMonths:            loan.TermMonths,
			TermYears:             loan.TermYears,
			InterestOnlyMonths:    loan.InterestOnlyMonths,
			AmortizationMonths:    loan.AmortizationMonths,
			OriginationFeePct:     loan.OriginationFeePct,
			ClosingCosts:          loan.ClosingCosts,
			InterestReserve:       loan.InterestReserve,
			NetLoanProceeds:       loan.NetLoanProceeds,
			DrawTriggerType:       loan.DrawTriggerType,
			ReleasePricePct:       loan.ReleasePricePct,
			MinimumReleasePrice:   loan.MinimumReleasePrice,
			RepaymentAcceleration: loan.RepaymentAcceleration,
			TakesOutLoanID:        loan.TakesOutLoanID,
		}
		if loan.StartDate != "" {
			start, err := time.Parse(DateTimeLayout, loan.StartDate)
			if err != nil {
				return nil, fmt.Errorf("loan %s has invalid start date %q: %w", loan.Name, loan.StartDate, err)
			}
			converted.StartDate = start
		}
		loans = append(loans, converted)
	}
	return loans, nil
}

// ToDivisions converts the division block to engine divisions.
func (c *Configuration) ToDivisions() []projection.Division {
	divisions := make([]projection.Division, 0, len(c.Divisions))
	for _, division := range c.Divisions {
		divisions = append(divisions, projection.Division{
			ID:                   division.ID,
			Name:                 division.Name,
			Acreage:              division.Acreage,
			LotbankDepositPct:    division.LotbankDepositPct,
			LotbankDepositCapPct: division.LotbankDepositCapPct,
			LotbankPremiumPct:    division.LotbankPremiumPct,
		})
	}
	return divisions
}
