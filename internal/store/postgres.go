// Package store provides PostgreSQL-backed implementations of the engine's
// read-only data providers.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/debt"
	"go.uber.org/zap"
)

// Store reads project records from PostgreSQL.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// New connects to the database at dsn and verifies the connection.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{db: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.db.Close()
}

// Providers returns the engine provider bundle backed by this store.
func (s *Store) Providers() projection.Providers {
	return projection.Providers{
		Assumptions: s,
		Budgets:     s,
		Sales:       s,
		Loans:       s,
		Divisions:   s,
	}
}

// Assumptions implements projection.AssumptionProvider.
func (s *Store) Assumptions(ctx context.Context, projectID int) (*projection.Assumptions, error) {
	const q = `
select p.id, p.name, p.start_date, p.hold_period_months, p.analysis_type,
       p.discount_rate_pct, p.price_growth_pct, p.cost_inflation_pct,
       p.total_acreage, p.acquisition_cost,
       coalesce(p.lotbank_management_fee_pct, 0),
       coalesce(p.lotbank_default_provision_pct, 0),
       coalesce(p.lotbank_underwriting_fee, 0)
from projects p
where p.id = $1;
`
	var a projection.Assumptions
	err := s.db.QueryRow(ctx, q, projectID).Scan(
		&a.ProjectID, &a.Name, &a.StartDate, &a.HoldPeriodMonths, &a.AnalysisType,
		&a.DiscountRatePct, &a.PriceGrowthPct, &a.CostInflationPct,
		&a.TotalAcreage, &a.AcquisitionCost,
		&a.Lotbank.ManagementFeePct, &a.Lotbank.DefaultProvisionPct, &a.Lotbank.UnderwritingFee,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", projectID, projection.ErrProjectNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// BudgetItems implements projection.BudgetProvider.
func (s *Store) BudgetItems(ctx context.Context, projectID int, containerIDs []int) ([]costs.BudgetItem, error) {
	const q = `
select b.description, b.category, b.container_id, b.amount,
       b.start_period, b.periods_to_complete, b.timing_method,
       coalesce(b.curve_steepness, 0), b.escalation_rate
from budget_items b
where b.project_id = $1
  and (cardinality($2::int[]) = 0 or b.container_id = any($2))
order by b.id;
`
	rows, err := s.db.Query(ctx, q, projectID, containerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []costs.BudgetItem
	for rows.Next() {
		var item costs.BudgetItem
		if err := rows.Scan(
			&item.Description, &item.Category, &item.ContainerID, &item.Amount,
			&item.StartPeriod, &item.PeriodsToComplete, &item.TimingMethod,
			&item.CurveSteepness, &item.EscalationRate,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ParcelSales implements projection.SaleProvider.
func (s *Store) ParcelSales(ctx context.Context, projectID int, containerIDs []int) ([]absorption.ParcelSale, error) {
	const q = `
select ps.id, ps.description, ps.container_id, coalesce(ps.product_type, ''),
       coalesce(ps.sale_period, 0), ps.units, ps.acreage,
       ps.gross_revenue, ps.net_revenue, ps.commissions,
       ps.closing_costs, ps.subdivision_costs
from parcel_sales ps
where ps.project_id = $1
  and (cardinality($2::int[]) = 0 or ps.container_id = any($2))
order by ps.id;
`
	rows, err := s.db.Query(ctx, q, projectID, containerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []absorption.ParcelSale
	for rows.Next() {
		var sale absorption.ParcelSale
		if err := rows.Scan(
			&sale.ParcelID, &sale.Description, &sale.ContainerID, &sale.ProductType,
			&sale.SalePeriod, &sale.Units, &sale.Acreage,
			&sale.GrossRevenue, &sale.NetRevenue, &sale.Commissions,
			&sale.ClosingCosts, &sale.SubdivisionCosts,
		); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// Loans implements projection.LoanProvider.
func (s *Store) Loans(ctx context.Context, projectID int, containerIDs []int) ([]debt.Loan, error) {
	const q = `
select l.id, l.name, coalesce(l.container_id, 0), l.structure_type,
       l.commitment_amount, l.interest_rate_pct, coalesce(l.start_date, '0001-01-01'::date),
       coalesce(l.term_months, 0), coalesce(l.term_years, 0),
       coalesce(l.interest_only_months, 0), coalesce(l.amortization_months, 0),
       coalesce(l.origination_fee_pct, 0), coalesce(l.closing_costs, 0),
       coalesce(l.interest_reserve, 0), coalesce(l.net_loan_proceeds, 0),
       coalesce(l.draw_trigger_type, ''), coalesce(l.release_price_pct, 0),
       coalesce(l.minimum_release_price, 0), coalesce(l.repayment_acceleration, 0),
       coalesce(l.takes_out_loan_id, 0)
from loans l
where l.project_id = $1
  and (cardinality($2::int[]) = 0 or l.container_id is null or l.container_id = any($2))
order by l.id;
`
	rows, err := s.db.Query(ctx, q, projectID, containerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []debt.Loan
	for rows.Next() {
		var loan debt.Loan
		if err := rows.Scan(
			&loan.ID, &loan.Name, &loan.ContainerID, &loan.Structure,
			&loan.CommitmentAmount, &loan.InterestRatePct, &loan.StartDate,
			&loan.TermMonths, &loan.TermYears,
			&loan.InterestOnlyMonths, &loan.AmortizationMonths,
			&loan.OriginationFeePct, &loan.ClosingCosts,
			&loan.InterestReserve, &loan.NetLoanProceeds,
			&loan.DrawTriggerType, &loan.ReleasePricePct,
			&loan.MinimumReleasePrice, &loan.RepaymentAcceleration,
			&loan.TakesOutLoanID,
		); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// Divisions implements projection.DivisionProvider.
func (s *Store) Divisions(ctx context.Context, projectID int) ([]projection.Division, error) {
	const q = `
select d.id, d.name, d.acreage,
       d.lotbank_deposit_pct, d.lotbank_deposit_cap_pct, d.lotbank_premium_pct
from divisions d
where d.project_id = $1
order by d.id;
`
	rows, err := s.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var divisions []projection.Division
	for rows.Next() {
		var division projection.Division
		if err := rows.Scan(
			&division.ID, &division.Name, &division.Acreage,
			&division.LotbankDepositPct, &division.LotbankDepositCapPct, &division.LotbankPremiumPct,
		); err != nil {
			return nil, err
		}
		divisions = append(divisions, division)
	}
	return divisions, rows.Err()
}
