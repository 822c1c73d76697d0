package config

import (
	"context"
	"fmt"

	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/debt"
)

// Source adapts a loaded Configuration to the engine's read-only provider
// interfaces. A source serves exactly the one project the file defines; any
// other project ID resolves to ErrProjectNotFound. A zero request ID matches
// the configured project.
type Source struct {
	conf *Configuration
}

// NewSource wraps a configuration as a provider set.
func NewSource(conf *Configuration) *Source {
	return &Source{conf: conf}
}

// Providers returns the engine provider bundle backed by this source.
func (s *Source) Providers() projection.Providers {
	return projection.Providers{
		Assumptions: s,
		Budgets:     s,
		Sales:       s,
		Loans:       s,
		Divisions:   s,
	}
}

func (s *Source) match(projectID int) error {
	if projectID != 0 && projectID != s.conf.Project.ID {
		return fmt.Errorf("project %d: %w", projectID, projection.ErrProjectNotFound)
	}
	return nil
}

// Assumptions implements projection.AssumptionProvider.
func (s *Source) Assumptions(_ context.Context, projectID int) (*projection.Assumptions, error) {
	if err := s.match(projectID); err != nil {
		return nil, err
	}
	return s.conf.ToAssumptions()
}

// BudgetItems implements projection.BudgetProvider.
func (s *Source) BudgetItems(_ context.Context, projectID int, containerIDs []int) ([]costs.BudgetItem, error) {
	if err := s.match(projectID); err != nil {
		return nil, err
	}
	items := s.conf.ToBudgetItems()
	if len(containerIDs) == 0 {
		return items, nil
	}
	var filtered []costs.BudgetItem
	for _, item := range items {
		if containsInt(containerIDs, item.ContainerID) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// ParcelSales implements projection.SaleProvider.
func (s *Source) ParcelSales(_ context.Context, projectID int, containerIDs []int) ([]absorption.ParcelSale, error) {
	if err := s.match(projectID); err != nil {
		return nil, err
	}
	sales := s.conf.ToParcelSales()
	if len(containerIDs) == 0 {
		return sales, nil
	}
	var filtered []absorption.ParcelSale
	for _, sale := range sales {
		if containsInt(containerIDs, sale.ContainerID) {
			filtered = append(filtered, sale)
		}
	}
	return filtered, nil
}

// Loans implements projection.LoanProvider.
func (s *Source) Loans(_ context.Context, projectID int, containerIDs []int) ([]debt.Loan, error) {
	if err := s.match(projectID); err != nil {
		return nil, err
	}
	loans, err := s.conf.ToLoans()
	if err != nil {
		return nil, err
	}
	if len(containerIDs) == 0 {
		return loans, nil
	}
	var filtered []debt.Loan
	for _, loan := range loans {
		if loan.ContainerID == 0 || containsInt(containerIDs, loan.ContainerID) {
			filtered = append(filtered, loan)
		}
	}
	return filtered, nil
}

// Divisions implements projection.DivisionProvider.
func (s *Source) Divisions(_ context.Context, projectID int) ([]projection.Division, error) {
	if err := s.match(projectID); err != nil {
		return nil, err
	}
	return s.conf.ToDivisions(), nil
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
