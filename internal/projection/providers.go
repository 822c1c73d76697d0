package projection

import (
	"context"
	"time"

	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/debt"
)

// Analysis types for a project.
const (
	AnalysisStandard = "STANDARD"
	AnalysisLotbank  = "LOTBANK"
)

// Assumptions are the project-level inputs to a projection run.
type Assumptions struct {
	ProjectID        int
	Name             string
	StartDate        time.Time
	HoldPeriodMonths int // 0 means no hold-period clipping
	AnalysisType     string

	DiscountRatePct  float64
	PriceGrowthPct   float64
	CostInflationPct float64

	TotalAcreage    float64
	AcquisitionCost float64

	Lotbank LotbankTerms
}

// LotbankTerms are the deal-level lotbank parameters on the project.
type LotbankTerms struct {
	ManagementFeePct    float64
	DefaultProvisionPct float64
	UnderwritingFee     float64
}

// Division is one container in the project hierarchy. Lotbank pricing fields
// are nil when the division does not participate in a lotbank structure.
type Division struct {
	ID      int
	Name    string
	Acreage float64

	LotbankDepositPct    *float64
	LotbankDepositCapPct *float64
	LotbankPremiumPct    *float64
}

// HasLotbankPricing reports whether the division exposes lotbank parameters.
func (d Division) HasLotbankPricing() bool {
	return d.LotbankDepositPct != nil
}

// Read-only data providers the engine depends on. Implementations must
// materialize all records before Project is invoked; the engine performs no
// I/O beyond these calls.
type (
	// AssumptionProvider resolves project-level assumptions. It returns
	// ErrProjectNotFound (possibly wrapped) for unknown projects.
	AssumptionProvider interface {
		Assumptions(ctx context.Context, projectID int) (*Assumptions, error)
	}

	// BudgetProvider lists budget line items scoped to a project and an
	// optional container filter.
	BudgetProvider interface {
		BudgetItems(ctx context.Context, projectID int, containerIDs []int) ([]costs.BudgetItem, error)
	}

	// SaleProvider lists parcel sale records scoped to a project and an
	// optional container filter.
	SaleProvider interface {
		ParcelSales(ctx context.Context, projectID int, containerIDs []int) ([]absorption.ParcelSale, error)
	}

	// LoanProvider lists loan master records scoped to a project and an
	// optional container filter.
	LoanProvider interface {
		Loans(ctx context.Context, projectID int, containerIDs []int) ([]debt.Loan, error)
	}

	// DivisionProvider lists the project's division hierarchy.
	DivisionProvider interface {
		Divisions(ctx context.Context, projectID int) ([]Division, error)
	}
)

// Providers bundles every data source the engine reads from.
type Providers struct {
	Assumptions AssumptionProvider
	Budgets     BudgetProvider
	Sales       SaleProvider
	Loans       LoanProvider
	Divisions   DivisionProvider
}
